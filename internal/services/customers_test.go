package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
)

type fakeCustomerAPI struct {
	fields    []feishu.Field
	fieldsErr error

	records   []feishu.Record
	searchErr error

	lastFilter feishu.SearchFilter
	lastNames  []string
	lastFields map[string]interface{}

	recordID  string
	createErr error
}

func (f *fakeCustomerAPI) ListFields(ctx context.Context, appToken, tableID string) ([]feishu.Field, error) {
	return f.fields, f.fieldsErr
}

func (f *fakeCustomerAPI) SearchRecords(ctx context.Context, appToken, tableID string, fieldNames []string, filter feishu.SearchFilter) ([]feishu.Record, error) {
	f.lastNames = fieldNames
	f.lastFilter = filter
	return f.records, f.searchErr
}

func (f *fakeCustomerAPI) CreateRecord(ctx context.Context, appToken, tableID string, fields map[string]interface{}) (string, error) {
	f.lastFields = fields
	return f.recordID, f.createErr
}

var testLoc = feishu.TableLocation{AppToken: "app", TableID: "tbl"}

func TestCheckDuplicateBuildsOrFilter(t *testing.T) {
	api := &fakeCustomerAPI{
		records: []feishu.Record{{RecordID: "recDUP"}},
	}
	svc := NewCustomerService(api)

	dup, id, err := svc.CheckDuplicate(context.Background(), testLoc, "13800000000", "wx_1")
	if err != nil {
		t.Fatalf("CheckDuplicate() error: %v", err)
	}
	if !dup || id != "recDUP" {
		t.Errorf("CheckDuplicate() = (%v, %q), want (true, recDUP)", dup, id)
	}

	if api.lastFilter.Conjunction != "or" {
		t.Errorf("conjunction = %q, want or", api.lastFilter.Conjunction)
	}
	if len(api.lastFilter.Conditions) != 2 {
		t.Fatalf("got %d conditions, want 2", len(api.lastFilter.Conditions))
	}
	if api.lastFilter.Conditions[0].FieldName != "电话" || api.lastFilter.Conditions[1].FieldName != "微信" {
		t.Errorf("conditions on %q/%q, want 电话/微信",
			api.lastFilter.Conditions[0].FieldName, api.lastFilter.Conditions[1].FieldName)
	}
	if len(api.lastNames) != 1 || api.lastNames[0] != "客户ID" {
		t.Errorf("projection = %v, want [客户ID]", api.lastNames)
	}
}

func TestCheckDuplicateNoIdentifiers(t *testing.T) {
	api := &fakeCustomerAPI{}
	svc := NewCustomerService(api)

	dup, id, err := svc.CheckDuplicate(context.Background(), testLoc, "", "")
	if err != nil || dup || id != "" {
		t.Errorf("CheckDuplicate with no identifiers = (%v, %q, %v), want (false, \"\", nil)", dup, id, err)
	}
}

func TestCheckDuplicateSearchFailure(t *testing.T) {
	api := &fakeCustomerAPI{searchErr: errors.New("boom")}
	svc := NewCustomerService(api)

	dup, _, err := svc.CheckDuplicate(context.Background(), testLoc, "138", "")
	if dup {
		t.Error("CheckDuplicate reported duplicate on search failure")
	}
	if err == nil {
		t.Error("CheckDuplicate swallowed the search error")
	}
}

func TestCreateCustomerRecordOptionMapping(t *testing.T) {
	api := &fakeCustomerAPI{
		recordID: "recNEW",
		fields: []feishu.Field{
			{
				FieldName: "渠道",
				Type:      feishu.FieldTypeSingleSelect,
				Property: &feishu.FieldProperty{
					Options: []feishu.FieldOption{
						{ID: "opt_1", Name: "抖音"},
						{ID: "opt_3", Name: "推荐"},
					},
				},
			},
		},
	}
	svc := NewCustomerService(api)

	recordID, err := svc.CreateCustomerRecord(context.Background(), testLoc, map[string]string{
		"渠道": "推荐",
		"电话": "13800000000",
	})
	if err != nil {
		t.Fatalf("CreateCustomerRecord() error: %v", err)
	}
	if recordID != "recNEW" {
		t.Errorf("recordID = %q, want recNEW", recordID)
	}

	if api.lastFields["渠道"] != "opt_3" {
		t.Errorf("渠道 = %v, want opt_3", api.lastFields["渠道"])
	}
	if api.lastFields["电话"] != "13800000000" {
		t.Errorf("电话 = %v, want raw copy", api.lastFields["电话"])
	}
}

func TestCreateCustomerRecordUnknownOptionPassthrough(t *testing.T) {
	api := &fakeCustomerAPI{
		recordID: "recNEW",
		fields: []feishu.Field{
			{
				FieldName: "渠道",
				Type:      feishu.FieldTypeSingleSelect,
				Property:  &feishu.FieldProperty{Options: []feishu.FieldOption{{ID: "opt_3", Name: "推荐"}}},
			},
		},
	}
	svc := NewCustomerService(api)

	if _, err := svc.CreateCustomerRecord(context.Background(), testLoc, map[string]string{
		"渠道": "未知",
		"微信": "wx_1",
	}); err != nil {
		t.Fatalf("CreateCustomerRecord() error: %v", err)
	}

	if api.lastFields["渠道"] != "未知" {
		t.Errorf("渠道 = %v, want raw text 未知", api.lastFields["渠道"])
	}
}

func TestCreateCustomerRecordDefaultsEntryDate(t *testing.T) {
	api := &fakeCustomerAPI{recordID: "recNEW"}
	svc := NewCustomerService(api)

	if _, err := svc.CreateCustomerRecord(context.Background(), testLoc, map[string]string{
		"电话": "13800000000",
	}); err != nil {
		t.Fatalf("CreateCustomerRecord() error: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	if api.lastFields["录入日期"] != today {
		t.Errorf("录入日期 = %v, want %s", api.lastFields["录入日期"], today)
	}
}

func TestCreateCustomerRecordSkipsEmptyFields(t *testing.T) {
	api := &fakeCustomerAPI{recordID: "recNEW"}
	svc := NewCustomerService(api)

	if _, err := svc.CreateCustomerRecord(context.Background(), testLoc, map[string]string{
		"渠道": "",
		"来源": "",
		"电话": "13800000000",
		"微信": "",
	}); err != nil {
		t.Fatalf("CreateCustomerRecord() error: %v", err)
	}

	if _, ok := api.lastFields["渠道"]; ok {
		t.Error("empty 渠道 should not be written")
	}
	if _, ok := api.lastFields["微信"]; ok {
		t.Error("empty 微信 should not be written")
	}
}

func TestCreateCustomerRecordSchemaFetchFailure(t *testing.T) {
	api := &fakeCustomerAPI{
		recordID:  "recNEW",
		fieldsErr: errors.New("schema unavailable"),
	}
	svc := NewCustomerService(api)

	// Schema failure degrades to raw-text writes, not an error.
	if _, err := svc.CreateCustomerRecord(context.Background(), testLoc, map[string]string{
		"渠道": "推荐",
		"电话": "13800000000",
	}); err != nil {
		t.Fatalf("CreateCustomerRecord() error: %v", err)
	}
	if api.lastFields["渠道"] != "推荐" {
		t.Errorf("渠道 = %v, want raw text when schema is unavailable", api.lastFields["渠道"])
	}
}
