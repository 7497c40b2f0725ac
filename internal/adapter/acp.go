package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// PermissionMode controls how an ACP adapter responds to a tool-call
// permission request from the agent.
type PermissionMode string

const (
	PermissionAutoApprove PermissionMode = "auto-approve"
	PermissionAsk         PermissionMode = "ask"
	PermissionDenyAll     PermissionMode = "deny-all"
	PermissionAllowlist   PermissionMode = "allowlist"
)

// PermissionRequest describes a tool-call the agent wants to perform.
type PermissionRequest struct {
	Tool      string
	Arguments map[string]any
}

// PermissionPrompter decides whether a tool call may proceed. The
// operator-facing implementation (an interactive terminal or UI prompt)
// lives outside this package; AutoDenyPrompter is the non-interactive
// default used by tests and non-TTY runs.
type PermissionPrompter interface {
	Prompt(ctx context.Context, req PermissionRequest) (allow bool)
}

// AutoDenyPrompter always denies, which is the safe default when no operator
// is attached to approve tool calls interactively.
type AutoDenyPrompter struct{}

func (AutoDenyPrompter) Prompt(context.Context, PermissionRequest) bool { return false }

// rpcRequest and rpcResponse follow JSON-RPC 2.0 framing, one object per
// line over stdin/stdout.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"` // set on notifications/requests from the agent
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ACPAdapter owns a persistent child process speaking JSON-RPC over stdio.
// Requests are correlated to responses by a monotonically increasing ID; a
// response whose ID matches no pending request is dropped. Of the messages
// without an ID, only "permission/request" is handled (answered according
// to the permission mode); every other notification is ignored, and there
// is no registry of notification handlers.
type ACPAdapter struct {
	command []string
	prompter PermissionPrompter
	mode     PermissionMode

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	started bool

	nextID  atomic.Int64
	pending sync.Map // map[int64]chan rpcResponse
}

// NewACPAdapter returns an ACPAdapter with deny-all permissions and
// AutoDenyPrompter as the default prompter. Callers needing interactive
// approval set the mode and prompter with WithPermissions.
func NewACPAdapter() *ACPAdapter {
	return &ACPAdapter{
		command:  []string{"acp-agent", "--stdio"},
		prompter: AutoDenyPrompter{},
		mode:     PermissionDenyAll,
	}
}

// WithPermissions configures the permission mode and prompter used for
// "ask" mode tool-call approval.
func (a *ACPAdapter) WithPermissions(mode PermissionMode, prompter PermissionPrompter) *ACPAdapter {
	a.mode = mode
	if prompter != nil {
		a.prompter = prompter
	}
	return a
}

func (a *ACPAdapter) Name() AgentType { return AgentACP }

func (a *ACPAdapter) SupportsModelSelection() bool { return false }

func (a *ACPAdapter) Available(ctx context.Context) bool {
	_, err := exec.LookPath(a.command[0])
	return err == nil
}

// ensureStarted lazily launches the persistent child and its reader
// goroutine on first use.
func (a *ACPAdapter) ensureStarted() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}

	cmd := exec.Command(a.command[0], a.command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("acp: creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("acp: creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("acp: starting agent process: %w", err)
	}

	a.cmd = cmd
	a.stdin = stdin
	a.started = true
	guard.Track(cmd)

	go a.readLoop(stdout)
	return nil
}

func (a *ACPAdapter) readLoop(stdout io.Reader) {
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var resp rpcResponse
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			continue
		}

		if resp.ID != nil {
			if ch, ok := a.pending.LoadAndDelete(*resp.ID); ok {
				ch.(chan rpcResponse) <- resp
			}
			continue
		}

		if resp.Method == "permission/request" {
			go a.handlePermissionRequest(resp)
		}
	}
}

func (a *ACPAdapter) handlePermissionRequest(notif rpcResponse) {
	var req PermissionRequest
	_ = json.Unmarshal(notif.Params, &req)

	allow := false
	switch a.mode {
	case PermissionAutoApprove, PermissionAllowlist:
		allow = true
	case PermissionAsk:
		allow = a.prompter.Prompt(context.Background(), req)
	case PermissionDenyAll:
		allow = false
	}

	a.send(rpcRequest{JSONRPC: "2.0", Method: "permission/respond", Params: map[string]any{"allow": allow}})
}

func (a *ACPAdapter) send(req rpcRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.stdin.Write(append(data, '\n'))
	return err
}

// call sends a correlated request and blocks for its response or deadline.
func (a *ACPAdapter) call(ctx context.Context, method string, params any, deadline time.Time) (rpcResponse, error) {
	id := a.nextID.Add(1)
	ch := make(chan rpcResponse, 1)
	a.pending.Store(id, ch)
	defer a.pending.Delete(id)

	if err := a.send(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return rpcResponse{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return rpcResponse{}, ctx.Err()
	case <-time.After(time.Until(deadline)):
		return rpcResponse{}, fmt.Errorf("acp: timed out waiting for %s response", method)
	}
}

// Execute sends a "session/prompt" request over the persistent connection and
// waits for its correlated response.
func (a *ACPAdapter) Execute(ctx context.Context, prompt, promptFilePath string, deadline time.Time) AgentResponse {
	start := time.Now()

	if err := a.ensureStarted(); err != nil {
		return AgentResponse{Success: false, Error: err.Error(), DurationSeconds: time.Since(start).Seconds()}
	}

	resp, err := a.call(ctx, "session/prompt", map[string]any{
		"prompt":      prompt,
		"promptFile":  promptFilePath,
	}, deadline)
	duration := time.Since(start).Seconds()

	if err != nil {
		return AgentResponse{Success: false, Error: "timeout", DurationSeconds: duration}
	}
	if resp.Error != nil {
		return AgentResponse{Success: false, Error: resp.Error.Message, DurationSeconds: duration}
	}

	var result struct {
		Output    string `json:"output"`
		TokensIn  *int   `json:"tokensIn"`
		TokensOut *int   `json:"tokensOut"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return AgentResponse{Success: false, Error: "parse error: " + err.Error(), DurationSeconds: duration}
	}

	return AgentResponse{
		Success:         true,
		Output:          result.Output,
		TokensIn:        result.TokensIn,
		TokensOut:       result.TokensOut,
		DurationSeconds: duration,
	}
}

// Shutdown tears the persistent child process down cleanly. Safe to call
// even if the adapter was never started.
func (a *ACPAdapter) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}
	// Write directly: send takes a.mu, which is already held here.
	if data, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "shutdown"}); err == nil {
		_, _ = a.stdin.Write(append(data, '\n'))
	}
	_ = a.stdin.Close()
	if a.cmd.Process != nil {
		_ = a.cmd.Process.Kill()
	}
	_ = a.cmd.Wait()
	guard.Release(a.cmd)
	a.started = false
	return nil
}
