package view

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	chatservice "github.com/w3wg/crypto-sage/internal/service/chat"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownView = errors.New("unknown view")

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Key   string
	Label string
	Icon  string
}

// Menu lists the navigable views in display order.
var Menu = []NavItem{
	{Key: "home", Label: "Home", Icon: "📖"},
	{Key: "about", Label: "About Us", Icon: "🌐"},
	{Key: "model", Label: "Model", Icon: "🛠"},
}

// ShellData feeds the page shell.
type ShellData struct {
	Title        string
	SidebarLabel string
	SessionID    string
	Banner       chatservice.Banner
	Menu         []NavItem
	Persona      persona.Persona
}

// PanelData feeds one of the main panel views.
type PanelData struct {
	Persona  persona.Persona
	Banner   chatservice.Banner
	Messages []chat.Message
	Error    string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New(md *Markdown) (*Renderer, error) {
	tmpl, err := template.New("pages").
		Funcs(template.FuncMap{"markdown": md.Render}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Shell renders the full single-page document.
func (r *Renderer) Shell(w io.Writer, data ShellData) error {
	if data.Menu == nil {
		data.Menu = Menu
	}
	return r.tmpl.ExecuteTemplate(w, "shell.html", data)
}

// Panel renders the fragment for the named view. System entries are
// filtered before rendering.
func (r *Renderer) Panel(w io.Writer, name string, data PanelData) error {
	if !IsView(name) {
		return ErrUnknownView
	}
	data.Messages = chat.Visible(data.Messages)
	return r.tmpl.ExecuteTemplate(w, name+".html", data)
}

// IsView reports whether name is a menu entry.
func IsView(name string) bool {
	for _, item := range Menu {
		if item.Key == name {
			return true
		}
	}
	return false
}
