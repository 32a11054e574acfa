// Package action builds validated ActionRequests for every kind the external tool supports.
//
// Each kind has a typed parameter struct. Build decodes loosely typed payloads
// (HTTP bodies, MCP arguments) into those structs with mapstructure.
package action

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// DefaultAPI is the endpoint used when none is configured.
const DefaultAPI = "https://us-west-00-firestarter.pipenetwork.com"

// DefaultPeriod is the token-usage reporting window.
const DefaultPeriod = "30d"

// GUIStyleFlag makes the tool print machine-readable progress lines.
const GUIStyleFlag = "--gui-style"

// PasswordFlag carries the account or encryption password.
const PasswordFlag = "--password"

// Tiers are the storage tiers accepted by upload-file.
var Tiers = []string{"normal", "priority", "premium", "ultra", "enterprise"}

var amountPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// Periods are the token-usage windows the tool understands.
var Periods = []string{"7d", "30d", "90d", "365d", "all"}

type LoginParams struct {
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
	API      string `mapstructure:"api"      json:"api,omitempty"`
}

type UploadParams struct {
	Local    string `mapstructure:"local"    json:"local"`
	Remote   string `mapstructure:"remote"   json:"remote"`
	Tier     string `mapstructure:"tier"     json:"tier,omitempty"`
	Encrypt  bool   `mapstructure:"encrypt"  json:"encrypt,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
}

type DownloadParams struct {
	Remote   string `mapstructure:"remote"   json:"remote"`
	SaveAs   string `mapstructure:"save_as"  json:"save_as"`
	Decrypt  bool   `mapstructure:"decrypt"  json:"decrypt,omitempty"`
	Legacy   bool   `mapstructure:"legacy"   json:"legacy,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
}

type LinkParams struct {
	Remote      string `mapstructure:"remote"      json:"remote"`
	Title       string `mapstructure:"title"       json:"title,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	API         string `mapstructure:"api"         json:"api,omitempty"`
}

// CryptParams configures encrypt-local and decrypt-local.
type CryptParams struct {
	Input    string `mapstructure:"input"    json:"input"`
	Output   string `mapstructure:"output"   json:"output"`
	Password string `mapstructure:"password" json:"password"`
}

type UsageParams struct {
	Period string `mapstructure:"period" json:"period,omitempty"`
}

type SwapParams struct {
	Amount string `mapstructure:"amount" json:"amount"`
}

type WithdrawSOLParams struct {
	Amount string `mapstructure:"amount" json:"amount"`
	To     string `mapstructure:"to"     json:"to"`
}

type WithdrawTokenParams struct {
	Mint   string `mapstructure:"mint"   json:"mint,omitempty"`
	Amount string `mapstructure:"amount" json:"amount"`
	To     string `mapstructure:"to"     json:"to"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", name)
	}
	return nil
}

func request(kind domain.ActionKind, args ...string) domain.ActionRequest {
	return domain.ActionRequest{Kind: kind, Command: kind.Command(), Args: args}
}

func password(pw string) []domain.Secret {
	return []domain.Secret{{Flag: PasswordFlag, Value: pw}}
}

func endpoint(api string) string {
	if api == "" {
		return DefaultAPI
	}
	return api
}

// Login builds `login <username> --api <api> --password <pw>`.
func Login(p LoginParams) (domain.ActionRequest, error) {
	if err := required("username", p.Username); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := required("password", p.Password); err != nil {
		return domain.ActionRequest{}, err
	}
	req := request(domain.ActionLogin, p.Username)
	req.Endpoint = endpoint(p.API)
	req.Secrets = password(p.Password)
	return req, nil
}

// Upload builds `upload-file <local> <remote> --tier <tier> [--encrypt] --gui-style [--password <pw>]`.
func Upload(p UploadParams) (domain.ActionRequest, error) {
	if err := required("local", p.Local); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := required("remote", p.Remote); err != nil {
		return domain.ActionRequest{}, err
	}
	tier := p.Tier
	if tier == "" {
		tier = Tiers[0]
	}
	if !slices.Contains(Tiers, tier) {
		return domain.ActionRequest{}, invalid("unknown tier %q", tier)
	}

	req := request(domain.ActionUpload, p.Local, p.Remote, "--tier", tier)
	if p.Encrypt {
		if err := required("password", p.Password); err != nil {
			return domain.ActionRequest{}, err
		}
		req.Args = append(req.Args, "--encrypt")
	}
	req.Args = append(req.Args, GUIStyleFlag)
	if p.Encrypt {
		req.Secrets = password(p.Password)
	}
	return req, nil
}

// Download builds `download-file <remote> <save-as> [--decrypt] [--legacy] --gui-style [--password <pw>]`.
func Download(p DownloadParams) (domain.ActionRequest, error) {
	if err := required("remote", p.Remote); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := required("save_as", p.SaveAs); err != nil {
		return domain.ActionRequest{}, err
	}

	req := request(domain.ActionDownload, p.Remote, p.SaveAs)
	if p.Decrypt {
		if err := required("password", p.Password); err != nil {
			return domain.ActionRequest{}, err
		}
		req.Args = append(req.Args, "--decrypt")
	}
	if p.Legacy {
		req.Args = append(req.Args, "--legacy")
	}
	req.Args = append(req.Args, GUIStyleFlag)
	if p.Decrypt {
		req.Secrets = password(p.Password)
	}
	return req, nil
}

// CreateLink builds `create-public-link <remote> [--title t] [--description d] --api <api>`.
func CreateLink(p LinkParams) (domain.ActionRequest, error) {
	remote := strings.TrimSpace(p.Remote)
	if err := required("remote", remote); err != nil {
		return domain.ActionRequest{}, err
	}
	req := request(domain.ActionCreateLink, remote)
	if t := strings.TrimSpace(p.Title); t != "" {
		req.Args = append(req.Args, "--title", t)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		req.Args = append(req.Args, "--description", d)
	}
	req.Endpoint = endpoint(p.API)
	return req, nil
}

// EncryptLocal builds `encrypt-local <in> <out> --password <pw>`.
func EncryptLocal(p CryptParams) (domain.ActionRequest, error) {
	return crypt(domain.ActionEncryptLocal, p)
}

// DecryptLocal builds `decrypt-local <in> <out> --password <pw>`.
func DecryptLocal(p CryptParams) (domain.ActionRequest, error) {
	return crypt(domain.ActionDecryptLocal, p)
}

func crypt(kind domain.ActionKind, p CryptParams) (domain.ActionRequest, error) {
	for _, f := range [][2]string{{"input", p.Input}, {"output", p.Output}, {"password", p.Password}} {
		if err := required(f[0], f[1]); err != nil {
			return domain.ActionRequest{}, err
		}
	}
	req := request(kind, p.Input, p.Output)
	req.Secrets = password(p.Password)
	return req, nil
}

// Bare builds a subcommand that takes no arguments (check-sol, check-token, list-uploads).
func Bare(kind domain.ActionKind) (domain.ActionRequest, error) {
	switch kind {
	case domain.ActionCheckSOL, domain.ActionCheckToken, domain.ActionListUploads:
		return request(kind), nil
	}
	return domain.ActionRequest{}, invalid("%s takes parameters", kind)
}

// TokenUsage builds `token-usage -p <period>`.
func TokenUsage(p UsageParams) (domain.ActionRequest, error) {
	period := p.Period
	if period == "" {
		period = DefaultPeriod
	}
	if !slices.Contains(Periods, period) {
		return domain.ActionRequest{}, invalid("unknown period %q", period)
	}
	return request(domain.ActionTokenUsage, "-p", period), nil
}

// Swap builds `swap-sol-for-pipe <amount>`.
func Swap(p SwapParams) (domain.ActionRequest, error) {
	if err := amount(p.Amount); err != nil {
		return domain.ActionRequest{}, err
	}
	return request(domain.ActionSwapSOL, p.Amount), nil
}

// WithdrawSOL builds `withdraw-sol <amount> <to-pubkey>`.
func WithdrawSOL(p WithdrawSOLParams) (domain.ActionRequest, error) {
	if err := amount(p.Amount); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := required("to", p.To); err != nil {
		return domain.ActionRequest{}, err
	}
	return request(domain.ActionWithdrawSOL, p.Amount, p.To), nil
}

// WithdrawToken builds `withdraw-custom-token <mint> <amount> <to-pubkey>`.
func WithdrawToken(p WithdrawTokenParams, defaultMint string) (domain.ActionRequest, error) {
	mint := p.Mint
	if mint == "" {
		mint = defaultMint
	}
	if err := required("mint", mint); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := amount(p.Amount); err != nil {
		return domain.ActionRequest{}, err
	}
	if err := required("to", p.To); err != nil {
		return domain.ActionRequest{}, err
	}
	return request(domain.ActionWithdrawToken, mint, p.Amount, p.To), nil
}

// amount accepts non-negative decimal numbers as typed by users.
func amount(s string) error {
	if err := required("amount", s); err != nil {
		return err
	}
	if !amountPattern.MatchString(s) {
		return invalid("amount %q is not a non-negative decimal", s)
	}
	return nil
}
