package feishu

import (
	"context"
	"encoding/json"
	"log"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// SendText sends a plain text message to a chat.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content, _ := json.Marshal(map[string]string{"text": text})

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := c.api.Im.Message.Create(ctx, req)
	if err != nil {
		log.Printf("❌ Failed to send message to %s: %v", chatID, err)
		return &RemoteCallError{Op: "send message", Err: err}
	}
	if !resp.Success() {
		log.Printf("❌ Feishu rejected message to %s: code=%d msg=%s", chatID, resp.Code, resp.Msg)
		return &RemoteCallError{Op: "send message", Code: resp.Code, Msg: resp.Msg}
	}
	return nil
}
