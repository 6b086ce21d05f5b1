// Package route holds the static table of cloud endpoints.
//
// Destinations are grouped into Upload, Download and Authentication routes.
// The grouping only helps callers organize their code; every destination is
// dispatched the same way.
package route

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultServerAddress is the cloud server base address.
const DefaultServerAddress = "http://0.0.0.0:8080/"

// ErrUnknownRoute is returned by Lookup for names outside the route table.
var ErrUnknownRoute = errors.New("unknown route")

// Group identifies which category a destination belongs to.
type Group string

const (
	GroupUpload         Group = "upload"
	GroupDownload       Group = "download"
	GroupAuthentication Group = "authentication"
)

// Destination is a symbolic request target resolved to a URL by a Table.
type Destination interface {
	// Path is the endpoint path relative to the server address.
	Path() string

	// Group is the category the destination is listed under.
	Group() Group
}

// Upload routes modify server-side records.
type Upload string

const (
	AddFound    Upload = "add_found"
	UpdateFound Upload = "update_found"
	DeleteFound Upload = "delete_found"
	AddStock    Upload = "add_stock"
	UpdateStock Upload = "update_stock"
	DeleteStock Upload = "delete_stock"
)

func (u Upload) Path() string { return string(u) }
func (Upload) Group() Group { return GroupUpload }

// Download routes fetch server-side records.
type Download string

const (
	GetFounds Download = "get_founds"
	GetStocks Download = "get_stocks"
	GetUsers  Download = "get_users"
)

func (d Download) Path() string { return string(d) }
func (Download) Group() Group { return GroupDownload }

// Authentication routes register and authenticate users.
type Authentication string

const (
	ApplicationForRegistration    Authentication = "application_for_registration"
	RegisterUser                  Authentication = "register_user"
	AuthenticateWithToken         Authentication = "authenticate_with_token"
	AuthenticateWithLoginPassword Authentication = "authenticate_with_login_password"
)

func (a Authentication) Path() string { return string(a) }
func (Authentication) Group() Group { return GroupAuthentication }

// Route listings per group, in declaration order.
var (
	Uploads         = []Upload{AddFound, UpdateFound, DeleteFound, AddStock, UpdateStock, DeleteStock}
	Downloads       = []Download{GetFounds, GetStocks, GetUsers}
	Authentications = []Authentication{
		ApplicationForRegistration,
		RegisterUser,
		AuthenticateWithToken,
		AuthenticateWithLoginPassword,
	}
)

// All returns every known destination, grouped Upload, Download, Authentication.
func All() []Destination {
	all := make([]Destination, 0, len(Uploads)+len(Downloads)+len(Authentications))
	for _, u := range Uploads {
		all = append(all, u)
	}
	for _, d := range Downloads {
		all = append(all, d)
	}
	for _, a := range Authentications {
		all = append(all, a)
	}
	return all
}

// Lookup finds a destination by its path name, e.g. "get_founds".
func Lookup(name string) (Destination, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	for _, d := range All() {
		if d.Path() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, name)
}

// Table resolves destinations against a server address.
type Table struct {
	// BaseURL always ends with a slash.
	BaseURL string
}

// NewTable creates a route table for the given server address.
// An empty address falls back to DefaultServerAddress.
func NewTable(serverAddress string) Table {
	if serverAddress == "" {
		serverAddress = DefaultServerAddress
	}
	if !strings.HasSuffix(serverAddress, "/") {
		serverAddress += "/"
	}
	return Table{BaseURL: serverAddress}
}

// URL returns the absolute URL of a destination.
func (t Table) URL(d Destination) string {
	return t.BaseURL + d.Path()
}
