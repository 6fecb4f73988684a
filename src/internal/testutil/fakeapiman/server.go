package fakeapiman

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// BasePath is where the API is mounted.
const BasePath = "/apiman"

// Version statuses.
const (
	StatusCreated   = "Created"
	StatusReady     = "Ready"
	StatusPublished = "Published"
)

// Request is one recorded call, with BasePath stripped.
type Request struct {
	Method string
	Path   string
}

type Gateway struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Type          string `json:"type"`
	Configuration string `json:"configuration"`
}

type Plugin struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Type       string `json:"type,omitempty"`
}

type Org struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Api struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Version is an API version and the last configuration PUT to it.
type Version struct {
	Version string         `json:"version"`
	Status  string         `json:"status"`
	Config  map[string]any `json:"-"`
}

type Policy struct {
	ID                 int64  `json:"id"`
	PolicyDefinitionID string `json:"policyDefinitionId"`
	Configuration      string `json:"configuration,omitempty"`
}

type failure struct {
	method    string
	path      string
	status    int
	remaining int
}

// Server holds the fake's state. All methods are safe for concurrent use.
type Server struct {
	mu sync.Mutex

	segment       string
	publishAction string
	publicField   string
	username      string
	password      string

	gateways map[string]*Gateway
	plugins  []Plugin
	orgs     map[string]*Org
	apis     map[string]*Api
	versions map[string]*Version
	policies map[string][]*Policy
	nextID   int64

	requests []Request
	failures []*failure
}

// Option configures a Server.
type Option func(*Server)

// WithVersion selects the server dialect.
func WithVersion(v remote.ServerVersion) Option {
	return func(s *Server) {
		if v == remote.ServerV11x {
			s.segment, s.publishAction, s.publicField = "services", "publishService", "publicService"
		} else {
			s.segment, s.publishAction, s.publicField = "apis", "publishAPI", "publicAPI"
		}
	}
}

// WithCredentials requires basic auth with the given credentials.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username, s.password = username, password
	}
}

// New creates an empty server speaking the default dialect.
func New(opts ...Option) *Server {
	s := &Server{
		gateways: make(map[string]*Gateway),
		orgs:     make(map[string]*Org),
		apis:     make(map[string]*Api),
		versions: make(map[string]*Version),
		policies: make(map[string][]*Policy),
	}
	WithVersion(remote.DefaultServerVersion)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the API under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(s.record)
	r.Use(s.basicAuth)
	r.Use(JSONContentType)

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/gateways/{gateway}", s.getGateway)
		r.Post("/gateways", s.createGateway)
		r.Put("/gateways/{gateway}", s.updateGateway)

		r.Get("/plugins", s.listPlugins)
		r.Post("/plugins", s.createPlugin)

		r.Post("/organizations", s.createOrg)
		r.Get("/organizations/{org}", s.getOrg)
		r.Put("/organizations/{org}", s.updateOrg)

		apis := "/organizations/{org}/" + s.segment
		r.Post(apis, s.createApi)
		r.Get(apis+"/{api}", s.getApi)
		r.Put(apis+"/{api}", s.updateApi)

		r.Post(apis+"/{api}/versions", s.createVersion)
		r.Get(apis+"/{api}/versions/{version}", s.getVersion)
		r.Put(apis+"/{api}/versions/{version}", s.updateVersion)

		r.Get(apis+"/{api}/versions/{version}/policies", s.listPolicies)
		r.Post(apis+"/{api}/versions/{version}/policies", s.createPolicy)
		r.Put(apis+"/{api}/versions/{version}/policies/{id}", s.updatePolicy)

		r.Post("/actions", s.action)
	})

	return r
}

// Fail makes the next times requests matching method and path answer with
// status. A negative times fails them forever.
func (s *Server) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &failure{method: method, path: path, status: status, remaining: times})
}

// takeFailure must be called with mu held.
func (s *Server) takeFailure(method, path string) int {
	for _, f := range s.failures {
		if f.method != method || f.path != path || f.remaining == 0 {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
		}
		return f.status
	}
	return 0
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts recorded requests. An empty method or path matches all.
func (s *Server) CountRequests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			n++
		}
	}
	return n
}

// SeedGateway installs a gateway directly.
func (s *Server) SeedGateway(gw Gateway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateways[gw.Name] = &gw
}

func (s *Server) Gateway(name string) (Gateway, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gw, ok := s.gateways[name]
	if !ok {
		return Gateway{}, false
	}
	return *gw, true
}

func (s *Server) Plugins() []Plugin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Plugin, len(s.plugins))
	copy(out, s.plugins)
	return out
}

func (s *Server) Org(name string) (Org, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[name]
	if !ok {
		return Org{}, false
	}
	return *o, true
}

func (s *Server) Api(org, api string) (Api, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apis[apiKey(org, api)]
	if !ok {
		return Api{}, false
	}
	return *a, true
}

func (s *Server) Version(org, api, version string) (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[versionKey(org, api, version)]
	if !ok {
		return Version{}, false
	}
	return *v, true
}

// Policies returns the policy chain of a version in order.
func (s *Server) Policies(org, api, version string) []Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Policy
	for _, p := range s.policies[versionKey(org, api, version)] {
		out = append(out, *p)
	}
	return out
}

// PublicField returns the version configuration key of the public flag.
func (s *Server) PublicField() string {
	return s.publicField
}

func apiKey(org, api string) string {
	return org + "/" + api
}

func versionKey(org, api, version string) string {
	return org + "/" + api + "/" + version
}
