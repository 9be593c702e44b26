package qrtoken

import (
	"encoding/base64"
	"encoding/json"
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	KindCheckin = "checkin"

	// pngSize is the pixel width of rendered QR images, large enough for
	// reliable scanning from a phone screen held up to a wall reader.
	pngSize = 256
)

// TokenPayload is what a QR code carries. It binds an employee and branch
// to an issuance timestamp; everything else (whether the scan means
// check-in or check-out) is decided by the attendance ledger.
type TokenPayload struct {
	EmployeeID string    `json:"employee_id"`
	BranchID   int64     `json:"branch_id"`
	Kind       string    `json:"kind"`
	IssuedAt   time.Time `json:"issued_at"`
}

// IssuedToken is the transport form handed to clients: the opaque token
// string plus a rendered PNG for direct display.
type IssuedToken struct {
	Data      string    `json:"data"`
	PNG       string    `json:"png_base64"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Codec issues and validates QR tokens with a fixed TTL.
type Codec struct {
	ttl time.Duration
	now func() time.Time
}

func NewCodec(ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &Codec{ttl: ttl, now: time.Now}
}

// NewCodecWithClock is for tests that need a controllable clock.
func NewCodecWithClock(ttl time.Duration, now func() time.Time) *Codec {
	c := NewCodec(ttl)
	c.now = now
	return c
}

// Issue encodes a payload for the employee and renders the PNG.
// Issuance is unconditional: a token can be issued and scanned any number
// of times, the ledger decides the semantic effect of each scan.
func (c *Codec) Issue(employeeID string, branchID int64) (*IssuedToken, error) {
	payload := TokenPayload{
		EmployeeID: employeeID,
		BranchID:   branchID,
		Kind:       KindCheckin,
		IssuedAt:   c.now(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode QR payload", err)
	}
	data := base64.URLEncoding.EncodeToString(raw)

	png, err := qrcode.Encode(data, qrcode.Medium, pngSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to render QR image", err)
	}

	return &IssuedToken{
		Data:      data,
		PNG:       base64.StdEncoding.EncodeToString(png),
		ExpiresAt: payload.IssuedAt.Add(c.ttl),
	}, nil
}

// Validate decodes a scanned token and checks its expiry.
func (c *Codec) Validate(encoded string) (*TokenPayload, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.ErrInvalidQRToken
	}

	var payload TokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.ErrInvalidQRToken
	}
	if payload.EmployeeID == "" || payload.IssuedAt.IsZero() {
		return nil, errors.ErrInvalidQRToken
	}

	if c.now().Sub(payload.IssuedAt) > c.ttl {
		return nil, errors.ErrQRTokenExpired
	}

	return &payload, nil
}

// TTL exposes the configured expiry window.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
