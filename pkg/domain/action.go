package domain

import "slices"

// ActionKind identifies a user-triggered action backed by one subcommand of the external tool.
type ActionKind string

const (
	ActionLogin         ActionKind = "login"
	ActionUpload        ActionKind = "upload"
	ActionDownload      ActionKind = "download"
	ActionCreateLink    ActionKind = "create-link"
	ActionEncryptLocal  ActionKind = "encrypt-local"
	ActionDecryptLocal  ActionKind = "decrypt-local"
	ActionCheckSOL      ActionKind = "check-sol"
	ActionCheckToken    ActionKind = "check-token"
	ActionTokenUsage    ActionKind = "token-usage"
	ActionSwapSOL       ActionKind = "swap-sol"
	ActionWithdrawSOL   ActionKind = "withdraw-sol"
	ActionWithdrawToken ActionKind = "withdraw-token"
	ActionListUploads   ActionKind = "list-uploads"
)

type kindInfo struct {
	command  string
	label    string
	transfer bool
}

var kinds = map[ActionKind]kindInfo{
	ActionLogin:         {command: "login", label: "Login"},
	ActionUpload:        {command: "upload-file", label: "Upload", transfer: true},
	ActionDownload:      {command: "download-file", label: "Download", transfer: true},
	ActionCreateLink:    {command: "create-public-link", label: "Create public link"},
	ActionEncryptLocal:  {command: "encrypt-local", label: "Encrypt"},
	ActionDecryptLocal:  {command: "decrypt-local", label: "Decrypt"},
	ActionCheckSOL:      {command: "check-sol", label: "Check SOL balance"},
	ActionCheckToken:    {command: "check-token", label: "Check token balance"},
	ActionTokenUsage:    {command: "token-usage", label: "Token usage"},
	ActionSwapSOL:       {command: "swap-sol-for-pipe", label: "Swap SOL for PIPE"},
	ActionWithdrawSOL:   {command: "withdraw-sol", label: "Withdraw SOL"},
	ActionWithdrawToken: {command: "withdraw-custom-token", label: "Withdraw token"},
	ActionListUploads:   {command: "list-uploads", label: "List uploads"},
}

// Kinds returns every known action kind in a stable order.
func Kinds() []ActionKind {
	out := make([]ActionKind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Command returns the subcommand token passed to the external tool.
func (k ActionKind) Command() string {
	return kinds[k].command
}

// Label returns a short human-readable name used in status lines.
func (k ActionKind) Label() string {
	if info, ok := kinds[k]; ok {
		return info.label
	}
	return string(k)
}

// Transfer reports whether the kind streams transfer progress lines.
func (k ActionKind) Transfer() bool {
	return kinds[k].transfer
}

// Secret is a flag/value pair that must never be logged verbatim.
type Secret struct {
	Flag  string
	Value string
}

// RedactedValue replaces secret values in logs and persisted commands.
const RedactedValue = "****"

// ActionRequest is an immutable description of one invocation of the external tool.
type ActionRequest struct {
	Kind     ActionKind `json:"kind"`
	Command  string     `json:"command"`
	Args     []string   `json:"args,omitempty"`
	Endpoint string     `json:"endpoint,omitempty"`
	// Secrets are appended to the argument list. They are visible to process
	// listings on the host; the tool offers no other channel.
	Secrets []Secret `json:"-"`
}

// Argv returns the full argument vector (without the executable).
func (r ActionRequest) Argv() []string {
	return r.build(false)
}

// Redacted returns the argument vector with secret values masked.
func (r ActionRequest) Redacted() []string {
	return r.build(true)
}

func (r ActionRequest) build(redact bool) []string {
	argv := make([]string, 0, 1+len(r.Args)+2+2*len(r.Secrets))
	argv = append(argv, r.Command)
	argv = append(argv, r.Args...)
	if r.Endpoint != "" {
		argv = append(argv, "--api", r.Endpoint)
	}
	for _, s := range r.Secrets {
		value := s.Value
		if redact {
			value = RedactedValue
		}
		argv = append(argv, s.Flag, value)
	}
	return argv
}
