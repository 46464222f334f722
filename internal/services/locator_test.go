package services

import (
	"context"
	"errors"
	"testing"

	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

type fakeLocatorAPI struct {
	node       *feishu.WikiNode
	nodeErr    error
	tables     []feishu.Table
	tablesErr  error
	nodeCalls  int
	tableCalls int
}

func (f *fakeLocatorAPI) GetWikiNode(ctx context.Context, nodeToken string) (*feishu.WikiNode, error) {
	f.nodeCalls++
	return f.node, f.nodeErr
}

func (f *fakeLocatorAPI) ListTables(ctx context.Context, appToken string) ([]feishu.Table, error) {
	f.tableCalls++
	return f.tables, f.tablesErr
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want feishu.TableLocation
	}{
		{
			name: "direct base url without params",
			url:  "https://example.feishu.cn/base/PzITbIyJfaB03BsqVtIcrjtznFf?from=from_copylink",
			want: feishu.TableLocation{AppToken: "PzITbIyJfaB03BsqVtIcrjtznFf"},
		},
		{
			name: "base url with table and view",
			url:  "https://example.feishu.cn/base/AbCtoken?table=tblXYZ&view=vewQRS",
			want: feishu.TableLocation{AppToken: "AbCtoken", TableID: "tblXYZ", ViewID: "vewQRS"},
		},
		{
			name: "wiki url keeps node token as candidate",
			url:  "https://example.feishu.cn/wiki/NodeTok123",
			want: feishu.TableLocation{AppToken: "NodeTok123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBaseURL(tt.url)
			if err != nil {
				t.Fatalf("ParseBaseURL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ParseBaseURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveMatchesTableByName(t *testing.T) {
	api := &fakeLocatorAPI{
		tables: []feishu.Table{
			{TableID: "tblOther", Name: "其他表"},
			{TableID: "tblTarget", Name: "⏰客户管理表"},
		},
	}
	store := storage.NewMemoryStore()
	locator := NewTableLocator(api, store, "https://example.feishu.cn/base/AppTok123", "⏰客户管理表")

	loc, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc.AppToken != "AppTok123" || loc.TableID != "tblTarget" {
		t.Errorf("Resolve() = %+v, want AppTok123/tblTarget", loc)
	}

	// Second resolution must come from the cache.
	if _, err := locator.Resolve(context.Background()); err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}
	if api.tableCalls != 1 {
		t.Errorf("ListTables called %d times, want 1 (cached)", api.tableCalls)
	}
}

func TestResolveTableIDFromURL(t *testing.T) {
	api := &fakeLocatorAPI{}
	locator := NewTableLocator(api, storage.NewMemoryStore(),
		"https://example.feishu.cn/base/AppTok?table=tblFromURL&view=vewA", "⏰客户管理表")

	loc, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc.TableID != "tblFromURL" || loc.ViewID != "vewA" {
		t.Errorf("Resolve() = %+v, want table id straight from URL", loc)
	}
	if api.tableCalls != 0 {
		t.Errorf("ListTables called %d times, want 0", api.tableCalls)
	}
}

func TestResolveWikiURL(t *testing.T) {
	api := &fakeLocatorAPI{
		node:   &feishu.WikiNode{NodeToken: "NodeTok", ObjType: "bitable", ObjToken: "RealAppTok"},
		tables: []feishu.Table{{TableID: "tbl1", Name: "⏰客户管理表"}},
	}
	locator := NewTableLocator(api, storage.NewMemoryStore(),
		"https://example.feishu.cn/wiki/NodeTok", "⏰客户管理表")

	loc, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc.AppToken != "RealAppTok" {
		t.Errorf("AppToken = %q, want obj_token substitution", loc.AppToken)
	}
	if api.nodeCalls != 1 {
		t.Errorf("GetWikiNode called %d times, want 1", api.nodeCalls)
	}
}

func TestResolveWikiNodeWithoutObjToken(t *testing.T) {
	api := &fakeLocatorAPI{
		node: &feishu.WikiNode{NodeToken: "NodeTok", ObjType: "doc"},
	}
	locator := NewTableLocator(api, storage.NewMemoryStore(),
		"https://example.feishu.cn/wiki/NodeTok", "⏰客户管理表")

	_, err := locator.Resolve(context.Background())
	var resErr *feishu.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Resolve() error = %v, want *feishu.ResolutionError", err)
	}
}

func TestResolveTableNotFound(t *testing.T) {
	api := &fakeLocatorAPI{
		tables: []feishu.Table{{TableID: "tbl1", Name: "别的表"}},
	}
	locator := NewTableLocator(api, storage.NewMemoryStore(),
		"https://example.feishu.cn/base/AppTok", "⏰客户管理表")

	_, err := locator.Resolve(context.Background())
	var notFound *feishu.TableNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve() error = %v, want *feishu.TableNotFoundError", err)
	}
}
