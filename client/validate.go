package client

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ValidateConfig configures the optional external ethscriptions-provider
// validation call.
type ValidateConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Validator checks indexer-computed ethscription state against a trusted
// external provider. ValidateHashIDs sits on the ingestion path: the
// batch-transfer decoder returns its error, so a failed call fails the
// block and the coordinator retries it.
type Validator struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewValidator builds a Validator. A zero-value BaseURL is not special-cased:
// requests still go out against it, so every validation call then fails.
func NewValidator(cfg ValidateConfig, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Validator{http: httpClient, logger: logger}
}

type ethscriptionLookup struct {
	HashID  string `json:"hashId"`
	Sha     string `json:"sha"`
	Owner   string `json:"owner"`
	TokenID uint64 `json:"tokenId"`
	Creator string `json:"creator"`
}

type validateBatchRequest struct {
	HashIDs []string `json:"hashIds"`
}

type validateBatchResponse struct {
	ValidHashIDs []string `json:"validHashIds"`
}

// ValidateHashIDs asks the external ethscriptions-provider which of hashIDs
// correspond to real, uniquely inscribed ethscriptions. Used by the batch
// transfer decoder (ESIP-5) to reject padding and malformed concatenations
// before treating a calldata word as a direct transfer.
func (v *Validator) ValidateHashIDs(hashIDs []common.Hash) ([]common.Hash, error) {
	if len(hashIDs) == 0 {
		return nil, nil
	}

	req := validateBatchRequest{HashIDs: make([]string, len(hashIDs))}
	for i, h := range hashIDs {
		req.HashIDs[i] = h.Hex()
	}

	var result validateBatchResponse
	resp, err := v.http.R().
		SetBody(req).
		SetResult(&result).
		Post("/ethscriptions/validate")
	if err != nil {
		return nil, fmt.Errorf("validate batch request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("validation provider returned status %d", resp.StatusCode())
	}

	valid := make([]common.Hash, 0, len(result.ValidHashIDs))
	for _, h := range result.ValidHashIDs {
		valid = append(valid, common.HexToHash(h))
	}
	return valid, nil
}

// ValidateEthscription fetches the provider's view of a hashId and reports
// whether the indexer's owner and tokenId agree with it.
func (v *Validator) ValidateEthscription(hashID common.Hash, owner common.Address, tokenID uint64) (bool, error) {
	var result ethscriptionLookup

	resp, err := v.http.R().
		SetResult(&result).
		Get(fmt.Sprintf("/ethscriptions/%s", hashID.Hex()))
	if err != nil {
		return false, fmt.Errorf("validation request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("validation provider returned status %d", resp.StatusCode())
	}

	match := common.HexToAddress(result.Owner) == owner && result.TokenID == tokenID
	if !match {
		v.logger.Warn("ethscription validation mismatch",
			zap.String("hashId", hashID.Hex()),
			zap.String("expectedOwner", owner.Hex()),
			zap.String("providerOwner", result.Owner),
			zap.Uint64("expectedTokenId", tokenID),
			zap.Uint64("providerTokenId", result.TokenID))
	}
	return match, nil
}
