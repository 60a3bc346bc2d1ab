package domain

import (
	"time"
)

// Association represents a DeSo user association
// Author grants are associations created by the platform identity towards an author
type Association struct {
	AssociationID                  string            `json:"AssociationID"`
	TransactorPublicKeyBase58Check string            `json:"TransactorPublicKeyBase58Check"`
	TargetUserPublicKeyBase58Check string            `json:"TargetUserPublicKeyBase58Check"`
	AppPublicKeyBase58Check        string            `json:"AppPublicKeyBase58Check"`
	AssociationType                string            `json:"AssociationType"`
	AssociationValue               string            `json:"AssociationValue"`
	ExtraData                      map[string]string `json:"ExtraData,omitempty"`
	BlockHeight                    uint32            `json:"BlockHeight"`
}

// NFTEntry represents a single serial number of an NFT
type NFTEntry struct {
	OwnerPublicKeyBase58Check string `json:"OwnerPublicKeyBase58Check"`
	SerialNumber              uint64 `json:"SerialNumber"`
	IsForSale                 bool   `json:"IsForSale"`
	MinBidAmountNanos         uint64 `json:"MinBidAmountNanos"`
	IsBuyNow                  bool   `json:"IsBuyNow"`
	BuyNowPriceNanos          uint64 `json:"BuyNowPriceNanos"`
}

// PostEntry represents the post an NFT was minted from
type PostEntry struct {
	PostHashHex                string            `json:"PostHashHex"`
	PosterPublicKeyBase58Check string            `json:"PosterPublicKeyBase58Check"`
	Body                       string            `json:"Body"`
	ImageURLs                  []string          `json:"ImageURLs,omitempty"`
	HasUnlockable              bool              `json:"HasUnlockable"`
	PostExtraData              map[string]string `json:"PostExtraData"`
	NumNFTCopies               uint64            `json:"NumNFTCopies"`
	TimestampNanos             uint64            `json:"TimestampNanos"`
}

// NFTData groups the serial numbers of an NFT with its originating post
type NFTData struct {
	NFTEntryResponses []NFTEntry `json:"NFTEntryResponses"`
	PostEntryResponse PostEntry  `json:"PostEntryResponse"`
}

// NFTsMap maps a post hash (hex) to the NFT minted from that post
type NFTsMap map[string]NFTData

// CheckStatus is the result category of a single association check
type CheckStatus string

const (
	// CheckStatusActive means the author NFT was found and is not expired
	CheckStatusActive CheckStatus = "active"
	// CheckStatusNoGrant means no NFT issued by the platform identity was found
	CheckStatusNoGrant CheckStatus = "no_grant"
	// CheckStatusRevoked means the grant was expired and the association was removed
	CheckStatusRevoked CheckStatus = "revoked"
	// CheckStatusFailed means the check could not complete
	CheckStatusFailed CheckStatus = "failed"
)

// CheckOutcome is the result of checking a single association
type CheckOutcome struct {
	AssociationID   string      `json:"association_id"`
	TargetPublicKey string      `json:"target_public_key"`
	Status          CheckStatus `json:"status"`
	Expired         bool        `json:"expired"`
	Error           string      `json:"error,omitempty"`
}

// Failed reports whether the check recorded a failure
func (o CheckOutcome) Failed() bool {
	return o.Status == CheckStatusFailed
}

// JobResult aggregates the outcomes of one run
type JobResult struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Revoked    int            `json:"revoked"`
	Outcomes   []CheckOutcome `json:"outcomes"`
}

// NewJobResult builds a job result from the collected outcomes
func NewJobResult(runID string, startedAt, finishedAt time.Time, outcomes []CheckOutcome) *JobResult {
	result := &JobResult{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      len(outcomes),
		Outcomes:   outcomes,
	}

	for _, o := range outcomes {
		if o.Failed() {
			result.Failed++
			continue
		}
		result.Succeeded++
		if o.Status == CheckStatusRevoked {
			result.Revoked++
		}
	}

	return result
}

// Failures returns the outcomes that recorded a failure
func (r *JobResult) Failures() []CheckOutcome {
	var failures []CheckOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failures = append(failures, o)
		}
	}
	return failures
}

// RevocationEvent is emitted after an author association has been removed
type RevocationEvent struct {
	EventID         string    `json:"event_id"`
	RunID           string    `json:"run_id"`
	AssociationID   string    `json:"association_id"`
	TargetPublicKey string    `json:"target_public_key"`
	AssociationType string    `json:"association_type"`
	RevokedAt       time.Time `json:"revoked_at"`
}
