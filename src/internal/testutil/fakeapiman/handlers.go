package fakeapiman

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) getGateway(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "gateway")

	gw, ok := s.Gateway(name)
	if !ok {
		WriteNotFound(w, "gateway "+name)
		return
	}
	writeJSONData(w, gw)
}

func (s *Server) createGateway(w http.ResponseWriter, r *http.Request) {
	var gw Gateway
	if err := decodeJSON(r, &gw); err != nil {
		WriteInvalidRequest(w, "invalid gateway: "+err.Error())
		return
	}
	if gw.Name == "" {
		WriteInvalidRequest(w, "gateway name is required")
		return
	}
	if !json.Valid([]byte(gw.Configuration)) {
		WriteInvalidRequest(w, "gateway configuration must be a JSON document")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.gateways[gw.Name]; exists {
		WriteConflict(w, fmt.Sprintf("gateway %s already exists", gw.Name))
		return
	}
	s.gateways[gw.Name] = &gw
	writeJSONData(w, gw)
}

func (s *Server) updateGateway(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "gateway")
	var update Gateway
	if err := decodeJSON(r, &update); err != nil {
		WriteInvalidRequest(w, "invalid gateway: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	gw, ok := s.gateways[name]
	if !ok {
		WriteNotFound(w, "gateway "+name)
		return
	}
	gw.Description = update.Description
	if update.Type != "" {
		gw.Type = update.Type
	}
	if update.Configuration != "" {
		gw.Configuration = update.Configuration
	}
	writeNoContent(w)
}

func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, s.Plugins())
}

func (s *Server) createPlugin(w http.ResponseWriter, r *http.Request) {
	var p Plugin
	if err := decodeJSON(r, &p); err != nil {
		WriteInvalidRequest(w, "invalid plugin: "+err.Error())
		return
	}
	if p.GroupID == "" || p.ArtifactID == "" || p.Version == "" {
		WriteInvalidRequest(w, "plugin coordinates are incomplete")
		return
	}
	if p.Type == "" {
		p.Type = "war"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.plugins {
		if existing == p {
			WriteConflict(w, fmt.Sprintf("plugin %s:%s:%s already installed", p.GroupID, p.ArtifactID, p.Version))
			return
		}
	}
	s.plugins = append(s.plugins, p)
	writeJSONData(w, p)
}

func (s *Server) createOrg(w http.ResponseWriter, r *http.Request) {
	var org Org
	if err := decodeJSON(r, &org); err != nil || org.Name == "" {
		WriteInvalidRequest(w, "organization name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[org.Name]; exists {
		WriteConflict(w, fmt.Sprintf("organization %s already exists", org.Name))
		return
	}
	s.orgs[org.Name] = &org
	writeJSONData(w, org)
}

func (s *Server) getOrg(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "org")

	org, ok := s.Org(name)
	if !ok {
		WriteNotFound(w, "organization "+name)
		return
	}
	writeJSONData(w, org)
}

func (s *Server) updateOrg(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "org")
	var update Org
	if err := decodeJSON(r, &update); err != nil {
		WriteInvalidRequest(w, "invalid organization: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[name]
	if !ok {
		WriteNotFound(w, "organization "+name)
		return
	}
	org.Description = update.Description
	writeNoContent(w)
}

func (s *Server) createApi(w http.ResponseWriter, r *http.Request) {
	orgName := chi.URLParam(r, "org")
	var api Api
	if err := decodeJSON(r, &api); err != nil || api.Name == "" {
		WriteInvalidRequest(w, "api name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[orgName]; !ok {
		WriteNotFound(w, "organization "+orgName)
		return
	}
	key := apiKey(orgName, api.Name)
	if _, exists := s.apis[key]; exists {
		WriteConflict(w, fmt.Sprintf("api %s already exists", key))
		return
	}
	s.apis[key] = &api
	writeJSONData(w, api)
}

func (s *Server) getApi(w http.ResponseWriter, r *http.Request) {
	org, name := chi.URLParam(r, "org"), chi.URLParam(r, "api")
	key := apiKey(org, name)

	api, ok := s.Api(org, name)
	if !ok {
		WriteNotFound(w, "api "+key)
		return
	}
	writeJSONData(w, api)
}

func (s *Server) updateApi(w http.ResponseWriter, r *http.Request) {
	key := apiKey(chi.URLParam(r, "org"), chi.URLParam(r, "api"))
	var update Api
	if err := decodeJSON(r, &update); err != nil {
		WriteInvalidRequest(w, "invalid api: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	api, ok := s.apis[key]
	if !ok {
		WriteNotFound(w, "api "+key)
		return
	}
	api.Description = update.Description
	writeNoContent(w)
}

func (s *Server) createVersion(w http.ResponseWriter, r *http.Request) {
	org, apiName := chi.URLParam(r, "org"), chi.URLParam(r, "api")
	var v Version
	if err := decodeJSON(r, &v); err != nil || v.Version == "" {
		WriteInvalidRequest(w, "version is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apis[apiKey(org, apiName)]; !ok {
		WriteNotFound(w, "api "+apiKey(org, apiName))
		return
	}
	key := versionKey(org, apiName, v.Version)
	if _, exists := s.versions[key]; exists {
		WriteConflict(w, fmt.Sprintf("version %s already exists", key))
		return
	}
	v.Status = StatusCreated
	s.versions[key] = &v
	writeJSONData(w, v)
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	org, api, version := chi.URLParam(r, "org"), chi.URLParam(r, "api"), chi.URLParam(r, "version")

	v, ok := s.Version(org, api, version)
	if !ok {
		WriteNotFound(w, "version "+versionKey(org, api, version))
		return
	}
	writeJSONData(w, v)
}

func (s *Server) updateVersion(w http.ResponseWriter, r *http.Request) {
	key := versionKey(chi.URLParam(r, "org"), chi.URLParam(r, "api"), chi.URLParam(r, "version"))
	var cfg map[string]any
	if err := decodeJSON(r, &cfg); err != nil {
		WriteInvalidRequest(w, "invalid version configuration: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[key]
	if !ok {
		WriteNotFound(w, "version "+key)
		return
	}
	if v.Status == StatusPublished {
		writeLocked(w, key)
		return
	}
	if gateways, ok := cfg["gateways"].([]any); ok {
		for _, g := range gateways {
			ref, _ := g.(map[string]any)
			id, _ := ref["gatewayId"].(string)
			if _, exists := s.gateways[id]; !exists {
				WriteNotFound(w, "gateway "+id)
				return
			}
		}
	}
	v.Config = cfg
	if endpoint, _ := cfg["endpoint"].(string); endpoint != "" && v.Status == StatusCreated {
		v.Status = StatusReady
	}
	writeNoContent(w)
}

func (s *Server) listPolicies(w http.ResponseWriter, r *http.Request) {
	key := versionKey(chi.URLParam(r, "org"), chi.URLParam(r, "api"), chi.URLParam(r, "version"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[key]; !ok {
		WriteNotFound(w, "version "+key)
		return
	}
	list := make([]Policy, 0, len(s.policies[key]))
	for _, p := range s.policies[key] {
		list = append(list, Policy{ID: p.ID, PolicyDefinitionID: p.PolicyDefinitionID})
	}
	writeJSONData(w, list)
}

type newPolicy struct {
	DefinitionID  string `json:"definitionId"`
	Configuration string `json:"configuration"`
}

func (s *Server) createPolicy(w http.ResponseWriter, r *http.Request) {
	key := versionKey(chi.URLParam(r, "org"), chi.URLParam(r, "api"), chi.URLParam(r, "version"))
	var req newPolicy
	if err := decodeJSON(r, &req); err != nil || req.DefinitionID == "" {
		WriteInvalidRequest(w, "policy definitionId is required")
		return
	}
	if !json.Valid([]byte(req.Configuration)) {
		WriteInvalidRequest(w, "policy configuration must be a JSON document")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[key]
	if !ok {
		WriteNotFound(w, "version "+key)
		return
	}
	if v.Status == StatusPublished {
		writeLocked(w, key)
		return
	}
	s.nextID++
	p := &Policy{ID: s.nextID, PolicyDefinitionID: req.DefinitionID, Configuration: req.Configuration}
	s.policies[key] = append(s.policies[key], p)
	writeJSONData(w, p)
}

func (s *Server) updatePolicy(w http.ResponseWriter, r *http.Request) {
	key := versionKey(chi.URLParam(r, "org"), chi.URLParam(r, "api"), chi.URLParam(r, "version"))
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteInvalidRequest(w, "invalid policy id")
		return
	}
	var req newPolicy
	if err := decodeJSON(r, &req); err != nil || !json.Valid([]byte(req.Configuration)) {
		WriteInvalidRequest(w, "policy configuration must be a JSON document")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.versions[key]; ok && v.Status == StatusPublished {
		writeLocked(w, key)
		return
	}
	for _, p := range s.policies[key] {
		if p.ID == id {
			p.Configuration = req.Configuration
			writeNoContent(w)
			return
		}
	}
	WriteNotFound(w, fmt.Sprintf("policy %d", id))
}

// writeLocked rejects changes to a published version.
func writeLocked(w http.ResponseWriter, key string) {
	WriteError(w, http.StatusConflict, ExceptionInvalidState, "version "+key+" is published and cannot be changed")
}

type actionRequest struct {
	Type           string `json:"type"`
	OrganizationID string `json:"organizationId"`
	EntityID       string `json:"entityId"`
	EntityVersion  string `json:"entityVersion"`
}

func (s *Server) action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, "invalid action: "+err.Error())
		return
	}
	if req.Type != s.publishAction {
		WriteInvalidRequest(w, "unsupported action type "+req.Type)
		return
	}

	key := versionKey(req.OrganizationID, req.EntityID, req.EntityVersion)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[key]
	if !ok {
		WriteNotFound(w, "version "+key)
		return
	}
	switch v.Status {
	case StatusPublished:
		WriteError(w, http.StatusConflict, ExceptionInvalidState, "version "+key+" is already published")
		return
	case StatusCreated:
		WriteError(w, http.StatusConflict, ExceptionInvalidState, "version "+key+" is not ready")
		return
	}
	v.Status = StatusPublished
	writeNoContent(w)
}
