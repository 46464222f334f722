package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

// botMention is the placeholder Feishu substitutes for an @-mention of the
// bot in group message text.
const botMention = "@_user_1"

// eventDedupTTL is how long a processed message id is remembered to absorb
// webhook redelivery.
const eventDedupTTL = 10 * time.Minute

// Fixed reply texts. The chat user only ever sees these.
const (
	msgTemplate = `请按以下模板提供信息：
渠道：
来源：
电话：
微信：`
	msgBadFormat       = "格式不正确，请按模板提供信息"
	msgNeedContact     = "电话和微信至少需要填写一个"
	msgDuplicatePrefix = "数据与客户ID："
	msgDuplicateSuffix = "重复"
	msgCreateSucceeded = "客户信息已成功录入！"
	msgCreateFailed    = "录入失败，请稍后重试"
)

// Messenger sends a text reply into a chat.
type Messenger interface {
	SendText(ctx context.Context, chatID, text string) error
}

// TableResolver produces the destination table location.
type TableResolver interface {
	Resolve(ctx context.Context) (feishu.TableLocation, error)
}

// CustomerDirectory is the duplicate check + record write surface the
// intake flow drives.
type CustomerDirectory interface {
	CheckDuplicate(ctx context.Context, loc feishu.TableLocation, phone, wechat string) (bool, string, error)
	CreateCustomerRecord(ctx context.Context, loc feishu.TableLocation, data map[string]string) (string, error)
}

// IntakeService is the conversation state machine. A group @-mention opens
// a session; the user's direct reply is parsed, validated, deduped and
// written to the table; every terminal outcome closes the session.
type IntakeService struct {
	store     storage.Store
	messenger Messenger
	locator   TableResolver
	customers CustomerDirectory
	archive   *ArchiveService // optional, nil disables archiving
}

// NewIntakeService wires the intake conversation flow.
func NewIntakeService(store storage.Store, messenger Messenger, locator TableResolver, customers CustomerDirectory, archive *ArchiveService) *IntakeService {
	return &IntakeService{
		store:     store,
		messenger: messenger,
		locator:   locator,
		customers: customers,
		archive:   archive,
	}
}

// HandleMessageEvent routes one im.message.receive_v1 event through the
// state machine.
func (s *IntakeService) HandleMessageEvent(ctx context.Context, event *models.MessageEvent) error {
	message := event.Message
	userID := event.Sender.SenderID.UserID
	text := strings.TrimSpace(message.Text())

	// Feishu redelivers events it considers unacknowledged; drop replays.
	if message.MessageID != "" {
		fresh, err := s.store.SetNX(ctx, storage.EventKeyPrefix+message.MessageID, "1", eventDedupTTL)
		if err != nil {
			log.Printf("Event dedup check failed: %v", err)
		} else if !fresh {
			log.Printf("Skipping redelivered message %s", message.MessageID)
			return nil
		}
	}

	log.Printf("📨 Message from %s in %s (%s): %.50s", userID, message.ChatID, message.ChatType, text)

	switch message.ChatType {
	case "group":
		if strings.Contains(text, botMention) {
			return s.startIntake(ctx, userID, message.ChatID)
		}
	case "p2p":
		session, err := s.store.GetSession(ctx, userID)
		if err != nil {
			log.Printf("Failed to load session for %s: %v", userID, err)
			return nil
		}
		if session != nil && session.Step == models.StepAwaitingInfo {
			return s.handleReply(ctx, userID, session, text)
		}
	}

	// No session, no trigger: ignore silently.
	return nil
}

// startIntake sends the instruction template and opens an AWAITING_INFO
// session for the user.
func (s *IntakeService) startIntake(ctx context.Context, userID, chatID string) error {
	if err := s.messenger.SendText(ctx, chatID, msgTemplate); err != nil {
		log.Printf("Failed to send intake template: %v", err)
	}

	session := &models.Session{
		ChatID:    chatID,
		Step:      models.StepAwaitingInfo,
		CreatedAt: time.Now(),
	}
	if err := s.store.SetSession(ctx, userID, session, models.SessionTTL); err != nil {
		log.Printf("Failed to store session for %s: %v", userID, err)
	}
	return nil
}

// handleReply processes the awaited info message: parse, validate, dedupe,
// write, confirm. Validation misses keep the session open; every other
// outcome deletes it.
func (s *IntakeService) handleReply(ctx context.Context, userID string, session *models.Session, text string) error {
	info := ParseCustomerInfo(text)
	if len(info) == 0 {
		s.reply(ctx, session.ChatID, msgBadFormat)
		return nil
	}

	phone := info[models.FieldPhone]
	wechat := info[models.FieldWechat]
	if phone == "" && wechat == "" {
		s.reply(ctx, session.ChatID, msgNeedContact)
		return nil
	}

	loc, err := s.locator.Resolve(ctx)
	if err != nil {
		log.Printf("Table resolution failed: %v", err)
		s.endSession(ctx, userID)
		s.reply(ctx, session.ChatID, msgCreateFailed)
		return nil
	}

	isDuplicate, duplicateID, err := s.customers.CheckDuplicate(ctx, loc, phone, wechat)
	if err != nil {
		// Fail-open: a failed search is treated as no duplicate. Confirmed
		// policy, see DESIGN.md.
		log.Printf("Duplicate search failed, continuing as non-duplicate: %v", err)
	}
	if isDuplicate {
		s.endSession(ctx, userID)
		s.reply(ctx, session.ChatID, msgDuplicatePrefix+duplicateID+msgDuplicateSuffix)
		return nil
	}

	data := map[string]string{
		models.FieldChannel: info[models.FieldChannel],
		models.FieldSource:  info[models.FieldSource],
		models.FieldPhone:   phone,
		models.FieldWechat:  wechat,
	}

	recordID, err := s.customers.CreateCustomerRecord(ctx, loc, data)
	s.endSession(ctx, userID)

	if err != nil {
		log.Printf("Record creation failed: %v", err)
		s.reply(ctx, session.ChatID, msgCreateFailed)
		return nil
	}

	if s.archive != nil {
		s.archive.SaveCustomer(ctx, &models.CustomerArchive{
			RecordID:  recordID,
			Channel:   info[models.FieldChannel],
			Source:    info[models.FieldSource],
			Phone:     phone,
			Wechat:    wechat,
			EntryDate: time.Now().Format("2006-01-02"),
			UserID:    userID,
		})
	}

	s.reply(ctx, session.ChatID, msgCreateSucceeded)
	return nil
}

// reply sends a fixed text back into the chat. Send failures are logged,
// never surfaced to the HTTP layer.
func (s *IntakeService) reply(ctx context.Context, chatID, text string) {
	if err := s.messenger.SendText(ctx, chatID, text); err != nil {
		log.Printf("Failed to send reply to %s: %v", chatID, err)
	}
}

func (s *IntakeService) endSession(ctx context.Context, userID string) {
	if err := s.store.DeleteSession(ctx, userID); err != nil {
		log.Printf("Failed to delete session for %s: %v", userID, err)
	}
}
