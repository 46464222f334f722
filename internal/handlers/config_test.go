package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/haoyun-crm/feishu-intake-bot/internal/config"
	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/services"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

type fakeLocatorClient struct {
	tables []feishu.Table
	err    error
}

func (f *fakeLocatorClient) GetWikiNode(ctx context.Context, nodeToken string) (*feishu.WikiNode, error) {
	return nil, fmt.Errorf("unexpected wiki lookup for %s", nodeToken)
}

func (f *fakeLocatorClient) ListTables(ctx context.Context, appToken string) ([]feishu.Table, error) {
	return f.tables, f.err
}

func newConfigApp(baseURL string, client *fakeLocatorClient) *fiber.App {
	cfg := &config.Config{
		AppID:           "cli_test",
		BaseURL:         baseURL,
		TargetTableName: "⏰客户管理表",
	}
	locator := services.NewTableLocator(client, storage.NewMemoryStore(), baseURL, cfg.TargetTableName)

	app := fiber.New()
	app.Get("/config", NewConfigHandler(cfg, locator).Show)
	return app
}

func TestConfigShowsParsedTable(t *testing.T) {
	baseURL := "https://example.feishu.cn/base/AppTok123?table=tblX&view=vewY"
	app := newConfigApp(baseURL, &fakeLocatorClient{})

	status, body := getJSON(t, app, "/config")

	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["app_id"] != "cli_test" || body["base_url"] != baseURL {
		t.Errorf("body = %v", body)
	}
	if body["target_table"] != "⏰客户管理表" {
		t.Errorf("target_table = %v", body["target_table"])
	}

	parsed, ok := body["parsed_params"].(map[string]interface{})
	if !ok {
		t.Fatalf("parsed_params = %v", body["parsed_params"])
	}
	if parsed["app_token"] != "AppTok123" || parsed["table_id"] != "tblX" || parsed["view_id"] != "vewY" {
		t.Errorf("parsed_params = %v", parsed)
	}
	if body["table_id"] != "tblX" {
		t.Errorf("table_id = %v, want tblX", body["table_id"])
	}
}

func TestConfigSurvivesResolutionFailure(t *testing.T) {
	// URL without a table parameter forces a table listing, which fails.
	app := newConfigApp("https://example.feishu.cn/base/AppTok123",
		&fakeLocatorClient{err: fmt.Errorf("api unreachable")})

	status, body := getJSON(t, app, "/config")

	if status != 200 {
		t.Fatalf("status = %d, want 200 even when resolution fails", status)
	}
	if body["table_id"] != nil {
		t.Errorf("table_id = %v, want null", body["table_id"])
	}
	parsed, ok := body["parsed_params"].(map[string]interface{})
	if !ok || parsed["app_token"] != "AppTok123" {
		t.Errorf("parsed_params = %v", body["parsed_params"])
	}
}
