package services

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

// tableIDCacheTTL is how long a resolved table id stays cached. The table
// rarely moves, so an hour is plenty.
const tableIDCacheTTL = 3600 * time.Second

// locatorAPI is the slice of the Feishu client the locator needs.
type locatorAPI interface {
	GetWikiNode(ctx context.Context, nodeToken string) (*feishu.WikiNode, error)
	ListTables(ctx context.Context, appToken string) ([]feishu.Table, error)
}

// TableLocator resolves the configured Bitable URL into a stable
// {app_token, table_id, view_id} triple.
type TableLocator struct {
	client      locatorAPI
	store       storage.Store
	baseURL     string
	targetTable string
}

// NewTableLocator creates a locator for the configured table URL.
func NewTableLocator(client locatorAPI, store storage.Store, baseURL, targetTable string) *TableLocator {
	return &TableLocator{
		client:      client,
		store:       store,
		baseURL:     baseURL,
		targetTable: targetTable,
	}
}

// ParseBaseURL splits a Bitable URL into its raw parts without any API
// calls: the trailing path segment as app_token candidate and the view/table
// query parameters. Wiki URLs still carry the node token as AppToken here.
func ParseBaseURL(rawURL string) (feishu.TableLocation, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return feishu.TableLocation{}, err
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	appToken := ""
	if len(segments) > 0 {
		appToken = segments[len(segments)-1]
	}

	query := parsed.Query()
	return feishu.TableLocation{
		AppToken: appToken,
		TableID:  query.Get("table"),
		ViewID:   query.Get("view"),
	}, nil
}

// Resolve produces the full table location, resolving wiki URLs through the
// node lookup and falling back to a name match over the table list when the
// URL does not carry a table id. The resolved table id is cached.
func (l *TableLocator) Resolve(ctx context.Context) (feishu.TableLocation, error) {
	loc, err := ParseBaseURL(l.baseURL)
	if err != nil {
		return feishu.TableLocation{}, err
	}

	// Wiki URLs point at a node, not at the Bitable itself. The node's
	// obj_token is the real app_token.
	if strings.Contains(l.baseURL, "/wiki/") {
		node, err := l.client.GetWikiNode(ctx, loc.AppToken)
		if err != nil {
			return feishu.TableLocation{}, err
		}
		if node.ObjToken == "" {
			return feishu.TableLocation{}, &feishu.ResolutionError{NodeToken: loc.AppToken, Msg: "node has no obj_token"}
		}
		loc.AppToken = node.ObjToken
	}

	if loc.TableID != "" {
		return loc, nil
	}

	// No table id in the URL: check the cache, then match by name.
	if cached, err := l.store.GetValue(ctx, storage.TableIDCacheKey); err == nil && cached != "" {
		loc.TableID = cached
		return loc, nil
	}

	log.Printf("No table_id in BASE_URL, listing tables to match %q", l.targetTable)
	tables, err := l.client.ListTables(ctx, loc.AppToken)
	if err != nil {
		return feishu.TableLocation{}, err
	}

	for _, table := range tables {
		if table.Name == l.targetTable {
			loc.TableID = table.TableID
			if err := l.store.SetValue(ctx, storage.TableIDCacheKey, loc.TableID, tableIDCacheTTL); err != nil {
				log.Printf("Failed to cache table id: %v", err)
			}
			return loc, nil
		}
	}

	return feishu.TableLocation{}, &feishu.TableNotFoundError{Name: l.targetTable}
}
