// Package route declares the navigable page table and its access metadata.
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
	"github.com/louisbranch/codemother/internal/services/web/templates"
)

// Meta carries the access flags and title for one route.
type Meta struct {
	RequiresAuth  bool
	RequiresAdmin bool
	// Title is the localization key used for the document title.
	Title string
}

// View renders the body of a routed page.
type View func(templates.PageContext) templ.Component

// Descriptor binds a path to its view and metadata.
type Descriptor struct {
	Path string
	Name string
	View View
	Meta Meta
}

// Table is an immutable set of route descriptors.
type Table struct {
	descriptors []Descriptor
	byPath      map[string]int
	byName      map[string]int
	router      *mux.Router
}

var (
	errEmptyPath = errors.New("route path is required")
	errEmptyName = errors.New("route name is required")
	errNoView    = errors.New("route view is required")
)

// NewTable validates descriptors and builds a lookup table.
func NewTable(descriptors ...Descriptor) (*Table, error) {
	t := &Table{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byPath:      make(map[string]int, len(descriptors)),
		byName:      make(map[string]int, len(descriptors)),
		router:      mux.NewRouter(),
	}
	for _, d := range descriptors {
		d.Path = strings.TrimSpace(d.Path)
		d.Name = strings.TrimSpace(d.Name)
		switch {
		case d.Path == "" || !strings.HasPrefix(d.Path, "/"):
			return nil, fmt.Errorf("%w: %q", errEmptyPath, d.Path)
		case d.Name == "":
			return nil, fmt.Errorf("%w: path %s", errEmptyName, d.Path)
		case d.View == nil:
			return nil, fmt.Errorf("%w: %s", errNoView, d.Name)
		}
		if _, dup := t.byPath[d.Path]; dup {
			return nil, fmt.Errorf("duplicate route path %s", d.Path)
		}
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %s", d.Name)
		}
		idx := len(t.descriptors)
		t.descriptors = append(t.descriptors, d)
		t.byPath[d.Path] = idx
		t.byName[d.Name] = idx
		t.router.Path(d.Path).Name(d.Name)
	}
	return t, nil
}

// Lookup returns the descriptor registered for an exact path.
func (t *Table) Lookup(path string) (Descriptor, bool) {
	if t == nil {
		return Descriptor{}, false
	}
	idx, ok := t.byPath[path]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[idx], true
}

// ByName returns the descriptor registered under name.
func (t *Table) ByName(name string) (Descriptor, bool) {
	if t == nil {
		return Descriptor{}, false
	}
	idx, ok := t.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[idx], true
}

// Match resolves the descriptor for a request using the table's router.
func (t *Table) Match(r *http.Request) (Descriptor, bool) {
	if t == nil || r == nil {
		return Descriptor{}, false
	}
	var match mux.RouteMatch
	if !t.router.Match(r, &match) || match.Route == nil {
		return Descriptor{}, false
	}
	return t.ByName(match.Route.GetName())
}

// Descriptors returns a copy of the table in declaration order.
func (t *Table) Descriptors() []Descriptor {
	if t == nil {
		return nil
	}
	out := make([]Descriptor, len(t.descriptors))
	copy(out, t.descriptors)
	return out
}

// Router mounts one GET/HEAD handler per descriptor.
func (t *Table) Router(handlerFor func(Descriptor) http.Handler) *mux.Router {
	router := mux.NewRouter()
	if t == nil || handlerFor == nil {
		return router
	}
	for _, d := range t.descriptors {
		router.Handle(d.Path, handlerFor(d)).Methods(http.MethodGet, http.MethodHead).Name(d.Name)
	}
	return router
}

// Route names.
const (
	NameHome       = "home"
	NameProducts   = "products"
	NameAbout      = "about"
	NameContact    = "contact"
	NameLogin      = "login"
	NameProfile    = "profile"
	NameAdminUsers = "admin-users"
)

// Default returns the application route table.
func Default() *Table {
	t, err := NewTable(
		Descriptor{Path: routepath.Root, Name: NameHome, View: templates.HomePage, Meta: Meta{Title: "common.nav.home"}},
		Descriptor{Path: routepath.Products, Name: NameProducts, View: templates.ProductsPage, Meta: Meta{Title: "common.nav.products"}},
		Descriptor{Path: routepath.About, Name: NameAbout, View: templates.AboutPage, Meta: Meta{Title: "common.nav.about"}},
		Descriptor{Path: routepath.Contact, Name: NameContact, View: templates.AboutPage, Meta: Meta{Title: "common.nav.contact"}},
		Descriptor{Path: routepath.Login, Name: NameLogin, View: templates.LoginView, Meta: Meta{Title: "login.heading"}},
		Descriptor{Path: routepath.Profile, Name: NameProfile, View: templates.ProfilePage, Meta: Meta{RequiresAuth: true, Title: "page.profile.heading"}},
		Descriptor{Path: routepath.AdminUsers, Name: NameAdminUsers, View: templates.AdminUsersPage, Meta: Meta{RequiresAdmin: true, Title: "page.admin_users.heading"}},
	)
	if err != nil {
		panic(fmt.Sprintf("route: invalid default table: %v", err))
	}
	return t
}
