package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	"github.com/tributaryhq/tributary/internal/orgcontext"
)

type fakeIdentityService struct {
	resolution identitydomain.Resolution
	graph      identitydomain.Graph
	err        error
	lastOrg    snowflake.ID
}

func (f *fakeIdentityService) Resolve(ctx context.Context, in identitydomain.SignalInput) (identitydomain.Resolution, error) {
	f.lastOrg, _ = orgcontext.OrgIDFromContext(ctx)
	return f.resolution, f.err
}

func (f *fakeIdentityService) GetGraph(ctx context.Context, contactID snowflake.ID) (identitydomain.Graph, error) {
	if f.err != nil {
		return identitydomain.Graph{}, f.err
	}
	return f.graph, nil
}

func newTestRouter(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	v1 := router.Group("/v1", OrgRequired())
	v1.POST("/identity/resolve", srv.ResolveIdentity)
	v1.GET("/contacts/:id/graph", srv.GetIdentityGraph)
	return router
}

func TestResolveEndpointRequiresOrgHeader(t *testing.T) {
	identitySvc := &fakeIdentityService{}
	srv := &Server{identitySvc: identitySvc}
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/v1/identity/resolve", bytes.NewBufferString(`{"email":"bob@acme.io"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without X-Org-ID, got %d", resp.Code)
	}
}

func TestResolveEndpointScopesTenant(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	orgID := node.Generate()
	contactID := node.Generate()

	identitySvc := &fakeIdentityService{
		resolution: identitydomain.Resolution{
			ContactID:  contactID,
			Confidence: 1.0,
			Source:     "email_exact",
		},
	}
	srv := &Server{identitySvc: identitySvc}
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/v1/identity/resolve", bytes.NewBufferString(`{"email":"bob@acme.io"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", orgID.String())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if identitySvc.lastOrg != orgID {
		t.Fatalf("expected org %s propagated to the service, got %s", orgID, identitySvc.lastOrg)
	}

	var body identitydomain.Resolution
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ContactID != contactID || body.Source != "email_exact" {
		t.Errorf("unexpected resolution body %+v", body)
	}
}

func TestResolveEndpointRejectsBadOrgHeader(t *testing.T) {
	srv := &Server{identitySvc: &fakeIdentityService{}}
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/v1/identity/resolve", bytes.NewBufferString(`{}`))
	req.Header.Set("X-Org-ID", "not-a-snowflake")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGraphEndpointMapsNotFound(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	srv := &Server{identitySvc: &fakeIdentityService{err: identitydomain.ErrNotFound}}
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/v1/contacts/"+node.Generate().String()+"/graph", nil)
	req.Header.Set("X-Org-ID", node.Generate().String())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGraphEndpointRejectsBadID(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	srv := &Server{identitySvc: &fakeIdentityService{}}
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/v1/contacts/abc/graph", nil)
	req.Header.Set("X-Org-ID", node.Generate().String())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
