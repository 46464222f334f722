package feishu

import "fmt"

// AuthError means the app_id/app_secret exchange was rejected or the auth
// call itself failed. Fatal at startup, surfaced as failure otherwise.
type AuthError struct {
	Msg string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feishu auth failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("feishu auth failed: %s", e.Msg)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ResolutionError means a wiki URL could not be resolved to a Bitable
// app_token.
type ResolutionError struct {
	NodeToken string
	Msg       string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve wiki node %q: %s", e.NodeToken, e.Msg)
}

// TableNotFoundError means no table in the Bitable matched the configured
// target name.
type TableNotFoundError struct {
	Name string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("no table named %q in bitable", e.Name)
}

// RemoteCallError wraps a non-success API response or transport failure.
type RemoteCallError struct {
	Op   string
	Code int
	Msg  string
	Err  error
}

func (e *RemoteCallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feishu %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("feishu %s failed: code=%d msg=%s", e.Op, e.Code, e.Msg)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }
