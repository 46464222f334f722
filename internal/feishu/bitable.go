package feishu

import (
	"context"

	larkbitable "github.com/larksuite/oapi-sdk-go/v3/service/bitable/v1"
)

// Field type tags used by the Bitable schema.
const (
	FieldTypeSingleSelect = 3
)

// TableLocation is the resolved destination of the intake table.
type TableLocation struct {
	AppToken string `json:"app_token"`
	TableID  string `json:"table_id"`
	ViewID   string `json:"view_id,omitempty"`
}

// Table is one data table inside a Bitable app.
type Table struct {
	TableID string `json:"table_id"`
	Name    string `json:"name"`
}

// FieldOption is one choice of a single-select field.
type FieldOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldProperty carries the type-specific schema of a field.
type FieldProperty struct {
	Options []FieldOption `json:"options"`
}

// Field is one column of a table.
type Field struct {
	FieldID   string         `json:"field_id"`
	FieldName string         `json:"field_name"`
	Type      int            `json:"type"`
	Property  *FieldProperty `json:"property"`
}

// Record is one row of a table.
type Record struct {
	RecordID string                 `json:"record_id"`
	Fields   map[string]interface{} `json:"fields"`
}

// SearchCondition is one predicate of a record search filter.
type SearchCondition struct {
	FieldName string   `json:"field_name"`
	Operator  string   `json:"operator"`
	Value     []string `json:"value"`
}

// SearchFilter combines conditions with "and" or "or".
type SearchFilter struct {
	Conjunction string            `json:"conjunction"`
	Conditions  []SearchCondition `json:"conditions"`
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ListTables lists the data tables of a Bitable app.
func (c *Client) ListTables(ctx context.Context, appToken string) ([]Table, error) {
	req := larkbitable.NewListAppTableReqBuilder().
		AppToken(appToken).
		Build()

	resp, err := c.api.Bitable.AppTable.List(ctx, req)
	if err != nil {
		return nil, &RemoteCallError{Op: "list tables", Err: err}
	}
	if !resp.Success() {
		return nil, &RemoteCallError{Op: "list tables", Code: resp.Code, Msg: resp.Msg}
	}

	tables := make([]Table, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		tables = append(tables, Table{
			TableID: strVal(item.TableId),
			Name:    strVal(item.Name),
		})
	}
	return tables, nil
}

// ListFields fetches the field schema of a table.
func (c *Client) ListFields(ctx context.Context, appToken, tableID string) ([]Field, error) {
	req := larkbitable.NewListAppTableFieldReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		Build()

	resp, err := c.api.Bitable.AppTableField.List(ctx, req)
	if err != nil {
		return nil, &RemoteCallError{Op: "list fields", Err: err}
	}
	if !resp.Success() {
		return nil, &RemoteCallError{Op: "list fields", Code: resp.Code, Msg: resp.Msg}
	}

	fields := make([]Field, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		field := Field{
			FieldID:   strVal(item.FieldId),
			FieldName: strVal(item.FieldName),
			Type:      intVal(item.Type),
		}
		if item.Property != nil && len(item.Property.Options) > 0 {
			prop := &FieldProperty{}
			for _, opt := range item.Property.Options {
				prop.Options = append(prop.Options, FieldOption{
					ID:   strVal(opt.Id),
					Name: strVal(opt.Name),
				})
			}
			field.Property = prop
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// SearchRecords searches a table with the given filter, returning only the
// projected field names.
func (c *Client) SearchRecords(ctx context.Context, appToken, tableID string, fieldNames []string, filter SearchFilter) ([]Record, error) {
	conditions := make([]*larkbitable.Condition, 0, len(filter.Conditions))
	for _, cond := range filter.Conditions {
		conditions = append(conditions, larkbitable.NewConditionBuilder().
			FieldName(cond.FieldName).
			Operator(cond.Operator).
			Value(cond.Value).
			Build())
	}

	req := larkbitable.NewSearchAppTableRecordReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		Body(larkbitable.NewSearchAppTableRecordReqBodyBuilder().
			FieldNames(fieldNames).
			Filter(larkbitable.NewFilterInfoBuilder().
				Conjunction(filter.Conjunction).
				Conditions(conditions).
				Build()).
			Build()).
		Build()

	resp, err := c.api.Bitable.AppTableRecord.Search(ctx, req)
	if err != nil {
		return nil, &RemoteCallError{Op: "search records", Err: err}
	}
	if !resp.Success() {
		return nil, &RemoteCallError{Op: "search records", Code: resp.Code, Msg: resp.Msg}
	}

	records := make([]Record, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		records = append(records, Record{
			RecordID: strVal(item.RecordId),
			Fields:   item.Fields,
		})
	}
	return records, nil
}

// CreateRecord creates one row and returns its record id.
func (c *Client) CreateRecord(ctx context.Context, appToken, tableID string, fields map[string]interface{}) (string, error) {
	req := larkbitable.NewCreateAppTableRecordReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		AppTableRecord(larkbitable.NewAppTableRecordBuilder().
			Fields(fields).
			Build()).
		Build()

	resp, err := c.api.Bitable.AppTableRecord.Create(ctx, req)
	if err != nil {
		return "", &RemoteCallError{Op: "create record", Err: err}
	}
	if !resp.Success() {
		return "", &RemoteCallError{Op: "create record", Code: resp.Code, Msg: resp.Msg}
	}
	if resp.Data.Record == nil {
		return "", &RemoteCallError{Op: "create record", Msg: "no record in response"}
	}
	return strVal(resp.Data.Record.RecordId), nil
}
