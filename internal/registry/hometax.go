package registry

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultURL is the Hometax business status inquiry endpoint
	DefaultURL = "https://teht.hometax.go.kr/wqAction.do?actionId=ATTABZAA001R08&screenId=UTEABAAA13&popupYn=false&realScreenId="

	// DefaultBody is the inquiry request; NumberPlaceholder is replaced by the registration number
	DefaultBody = `<map id="ATTABZAA001R08"><pubcUserNo/><mobYn>N</mobYn><inqrTrgtClCd>1</inqrTrgtClCd><txprDscmNo>{CRN}</txprDscmNo><dongCode>15</dongCode><psbSearch>Y</psbSearch><map id="userReqInfoVO"/></map>`

	// NumberPlaceholder marks where the registration number goes in the body
	NumberPlaceholder = "{CRN}"

	// DefaultTimeout bounds a single inquiry
	DefaultTimeout = 60 * time.Second

	statusElement = "trtCntn"
)

// ErrUnparsableResponse is returned alongside the raw response text when no
// status element could be read from it
var ErrUnparsableResponse = errors.New("response has no status element")

// Session looks up registration statuses. A session is owned by one worker.
type Session interface {
	// Lookup returns the registration status for number
	Lookup(ctx context.Context, number string) (string, error)

	// Close releases the session's connections
	Close() error
}

// Hometax implements Session against the Hometax inquiry endpoint
type Hometax struct {
	url     string
	body    string
	timeout time.Duration
	client  *http.Client
}

// NewHometax creates a Hometax session with its own transport
func NewHometax(url, body string, timeout time.Duration) *Hometax {
	if url == "" {
		url = DefaultURL
	}
	if body == "" {
		body = DefaultBody
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Hometax{
		url:     url,
		body:    body,
		timeout: timeout,
		client: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}
}

// HometaxSessions returns a factory building one Hometax session per call
func HometaxSessions(url, body string, timeout time.Duration) func() Session {
	return func() Session {
		return NewHometax(url, body, timeout)
	}
}

// Lookup posts the inquiry for number. When the response carries no status
// element the raw text is returned together with ErrUnparsableResponse.
func (h *Hometax) Lookup(ctx context.Context, number string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	reqBody := strings.ReplaceAll(h.body, NumberPlaceholder, normalizeNumber(number))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, strings.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=UTF-8")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling hometax: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hometax error (status %d): %s", resp.StatusCode, stripNewlines(string(body)))
	}

	status, err := parseStatus(body)
	if err != nil {
		return stripNewlines(string(body)), err
	}
	return stripNewlines(status), nil
}

// Close drops idle connections held by the session's transport
func (h *Hometax) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// parseStatus returns the text of the first status element in body
func parseStatus(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", ErrUnparsableResponse
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != statusElement {
			continue
		}

		var status string
		if err := dec.DecodeElement(&status, &se); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
		}
		return status, nil
	}
}

// normalizeNumber drops the dashes of a printed registration number
func normalizeNumber(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), "-", "")
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
