package services

import (
	"context"
	"log"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

// singleSelectFields are the intake fields backed by single-select columns.
var singleSelectFields = []string{models.FieldChannel, models.FieldSource}

// customerAPI is the slice of the Feishu client the customer service needs.
type customerAPI interface {
	ListFields(ctx context.Context, appToken, tableID string) ([]feishu.Field, error)
	SearchRecords(ctx context.Context, appToken, tableID string, fieldNames []string, filter feishu.SearchFilter) ([]feishu.Record, error)
	CreateRecord(ctx context.Context, appToken, tableID string, fields map[string]interface{}) (string, error)
}

// CustomerService checks for duplicate customers and writes intake records
// into the Bitable.
type CustomerService struct {
	client customerAPI
}

// NewCustomerService creates a customer service over the given API client.
func NewCustomerService(client customerAPI) *CustomerService {
	return &CustomerService{client: client}
}

// CheckDuplicate searches the table for an existing record whose phone or
// wechat matches. The error is informational: callers treat a failed search
// as "no duplicate" (fail-open) and log it.
func (s *CustomerService) CheckDuplicate(ctx context.Context, loc feishu.TableLocation, phone, wechat string) (bool, string, error) {
	var conditions []feishu.SearchCondition
	if phone != "" {
		conditions = append(conditions, feishu.SearchCondition{
			FieldName: models.FieldPhone,
			Operator:  "is",
			Value:     []string{phone},
		})
	}
	if wechat != "" {
		conditions = append(conditions, feishu.SearchCondition{
			FieldName: models.FieldWechat,
			Operator:  "is",
			Value:     []string{wechat},
		})
	}
	if len(conditions) == 0 {
		return false, "", nil
	}

	records, err := s.client.SearchRecords(ctx, loc.AppToken, loc.TableID,
		[]string{models.FieldCustomer},
		feishu.SearchFilter{Conjunction: "or", Conditions: conditions})
	if err != nil {
		return false, "", err
	}

	if len(records) > 0 {
		return true, records[0].RecordID, nil
	}
	return false, "", nil
}

// CreateCustomerRecord assembles the field payload and creates one row,
// returning the new record id. Single-select values are translated to their
// option ids when the schema knows them, and 录入日期 defaults to today.
func (s *CustomerService) CreateCustomerRecord(ctx context.Context, loc feishu.TableLocation, data map[string]string) (string, error) {
	schema, err := s.client.ListFields(ctx, loc.AppToken, loc.TableID)
	if err != nil {
		log.Printf("Failed to fetch field schema: %v", err)
		schema = nil
	}

	fields := make(map[string]interface{})

	for _, name := range singleSelectFields {
		text, ok := data[name]
		if !ok || text == "" {
			continue
		}
		if optionID := singleSelectOptionID(schema, name, text); optionID != "" {
			fields[name] = optionID
		} else {
			// Unknown option text goes through unchanged.
			fields[name] = text
		}
	}

	for name, value := range data {
		if name == models.FieldChannel || name == models.FieldSource {
			continue
		}
		if value != "" {
			fields[name] = value
		}
	}

	if _, ok := fields[models.FieldEntryDate]; !ok {
		fields[models.FieldEntryDate] = time.Now().Format("2006-01-02")
	}

	recordID, err := s.client.CreateRecord(ctx, loc.AppToken, loc.TableID, fields)
	if err != nil {
		return "", err
	}

	log.Printf("✅ Customer record created: %s", recordID)
	return recordID, nil
}

// singleSelectOptionID finds the option id matching the given text on a
// single-select field, or "" when the field or option is unknown.
func singleSelectOptionID(schema []feishu.Field, fieldName, optionText string) string {
	for _, field := range schema {
		if field.FieldName != fieldName || field.Type != feishu.FieldTypeSingleSelect {
			continue
		}
		if field.Property == nil {
			continue
		}
		for _, option := range field.Property.Options {
			if option.Name == optionText {
				return option.ID
			}
		}
	}
	return ""
}
