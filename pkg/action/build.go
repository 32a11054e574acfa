package action

import (
	"fmt"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/mitchellh/mapstructure"
)

// Defaults fills parameters the payload leaves empty.
type Defaults struct {
	API  string
	Mint string
}

// Build decodes params into the parameter struct of kind and returns the request.
// Unknown keys are rejected. Numbers and booleans may arrive as strings.
func Build(kind domain.ActionKind, params map[string]any, def Defaults) (domain.ActionRequest, error) {
	if !kind.Valid() {
		return domain.ActionRequest{}, invalid("unknown action kind %q", kind)
	}
	if def.Mint == "" {
		def.Mint = extract.PipeMint
	}

	switch kind {
	case domain.ActionLogin:
		p := LoginParams{API: def.API}
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return Login(p)
	case domain.ActionUpload:
		var p UploadParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return Upload(p)
	case domain.ActionDownload:
		var p DownloadParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return Download(p)
	case domain.ActionCreateLink:
		p := LinkParams{API: def.API}
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return CreateLink(p)
	case domain.ActionEncryptLocal, domain.ActionDecryptLocal:
		var p CryptParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		if kind == domain.ActionEncryptLocal {
			return EncryptLocal(p)
		}
		return DecryptLocal(p)
	case domain.ActionTokenUsage:
		var p UsageParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return TokenUsage(p)
	case domain.ActionSwapSOL:
		var p SwapParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return Swap(p)
	case domain.ActionWithdrawSOL:
		var p WithdrawSOLParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return WithdrawSOL(p)
	case domain.ActionWithdrawToken:
		var p WithdrawTokenParams
		if err := decode(params, &p); err != nil {
			return domain.ActionRequest{}, err
		}
		return WithdrawToken(p, def.Mint)
	default:
		if len(params) > 0 {
			return domain.ActionRequest{}, invalid("%s takes no parameters", kind)
		}
		return Bare(kind)
	}
}

func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}
