package feishu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// WikiNode is the metadata of a node in a Feishu wiki space. For nodes that
// embed a Bitable, ObjToken is the real app_token.
type WikiNode struct {
	NodeToken string `json:"node_token"`
	ObjType   string `json:"obj_type"`
	ObjToken  string `json:"obj_token"`
	Title     string `json:"title"`
}

// GetWikiNode fetches node metadata for a wiki node token.
func (c *Client) GetWikiNode(ctx context.Context, nodeToken string) (*WikiNode, error) {
	path := "/open-apis/wiki/v2/spaces/get_node?token=" + url.QueryEscape(nodeToken)

	data, err := c.do(ctx, "get wiki node", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Node *WikiNode `json:"node"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &RemoteCallError{Op: "get wiki node", Err: err}
	}
	if result.Node == nil {
		return nil, &ResolutionError{NodeToken: nodeToken, Msg: "no node in response"}
	}
	return result.Node, nil
}
