// Package googledocs talks to the Google Drive and Docs REST APIs with an
// OAuth refresh token. It implements the templating client the document
// synthesizer depends on.
//
// Templates mark substitution points as <placeholder> and the photo slot as
// <picture> or <pic>.
package googledocs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	dErrors "lingkod/pkg/domain-errors"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultDriveURL = "https://www.googleapis.com/drive/v3"
	defaultDocsURL  = "https://docs.googleapis.com/v1"

	// access tokens are refreshed this long before they expire
	tokenSlack = 30 * time.Second
)

type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	refreshToken string

	tokenURL string
	driveURL string
	docsURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints points the client at alternate API hosts, for tests.
func WithEndpoints(tokenURL, driveURL, docsURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.driveURL = driveURL
		c.docsURL = docsURL
	}
}

func New(clientID, clientSecret, refreshToken string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		tokenURL:     defaultTokenURL,
		driveURL:     defaultDriveURL,
		docsURL:      defaultDocsURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// token returns a cached access token, refreshing it via the refresh-token
// grant when it is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {c.refreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "token refresh failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || strings.Contains(string(body), "invalid_grant") {
			return "", dErrors.New(dErrors.CodeUpstreamAuth,
				"templating credentials rejected, the refresh token must be re-issued")
		}
		return "", dErrors.Newf(dErrors.CodeUpstream, "token endpoint returned %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", dErrors.New(dErrors.CodeUpstream, "token endpoint returned an unreadable response")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// call performs an authenticated JSON request and decodes the response into
// out when out is non-nil.
func (c *Client) call(ctx context.Context, method, callURL string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, callURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "templating request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return classify(resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "unreadable templating response")
	}
	return nil
}

// classify maps upstream failures onto domain error codes. Throttling is the
// only retryable class.
func classify(status int, body string) error {
	lower := strings.ToLower(body)
	switch {
	case status == http.StatusForbidden && strings.Contains(lower, "rate limit"):
		return dErrors.New(dErrors.CodeRateLimited, "templating service rate limit exceeded")
	case status == http.StatusUnauthorized || strings.Contains(lower, "invalid_grant"):
		return dErrors.New(dErrors.CodeUpstreamAuth,
			"templating credentials rejected, the refresh token must be re-issued")
	case status == http.StatusNotFound:
		return dErrors.New(dErrors.CodeUpstream, "template or output folder not found, check sharing and ids")
	case status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeUpstream, "templating permission denied, check template and folder sharing")
	}
	return dErrors.Newf(dErrors.CodeUpstream, "templating service returned %d", status)
}

// CopyTemplate copies the template document into the output folder and
// returns the new document's id.
func (c *Client) CopyTemplate(ctx context.Context, templateID, outputFolderID, fileName string) (string, error) {
	callURL := fmt.Sprintf("%s/files/%s/copy?fields=id&supportsAllDrives=true", c.driveURL, url.PathEscape(templateID))
	payload := map[string]any{
		"name":     fileName,
		"parents":  []string{outputFolderID},
		"mimeType": "application/vnd.google-apps.document",
	}

	var copied struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, callURL, payload, &copied); err != nil {
		return "", err
	}
	if copied.ID == "" {
		return "", dErrors.New(dErrors.CodeUpstream, "template copy returned no document id")
	}
	return copied.ID, nil
}

// ReplaceText substitutes every <key> placeholder with its value, matching
// case. The photo placeholder is handled separately and skipped here.
func (c *Client) ReplaceText(ctx context.Context, docID string, replacements map[string]string) error {
	requests := make([]map[string]any, 0, len(replacements))
	for key, value := range replacements {
		if strings.EqualFold(key, "picture") {
			continue
		}
		requests = append(requests, map[string]any{
			"replaceAllText": map[string]any{
				"containsText": map[string]any{
					"text":      "<" + key + ">",
					"matchCase": true,
				},
				"replaceText": value,
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}
	return c.batchUpdate(ctx, docID, requests)
}

// ClearImagePlaceholder removes the photo placeholder text so documents
// without a photo do not print it.
func (c *Client) ClearImagePlaceholder(ctx context.Context, docID string) error {
	requests := make([]map[string]any, 0, 2)
	for _, placeholder := range []string{"<picture>", "<pic>"} {
		requests = append(requests, map[string]any{
			"replaceAllText": map[string]any{
				"containsText": map[string]any{
					"text":      placeholder,
					"matchCase": false,
				},
				"replaceText": "",
			},
		})
	}
	return c.batchUpdate(ctx, docID, requests)
}

// EmbedImage swaps the photo placeholder for an inline image sized to a
// square of sizePt points. A template without a placeholder reports false
// without an error.
func (c *Client) EmbedImage(ctx context.Context, docID, imageURL string, sizePt float64) (bool, error) {
	doc, err := c.getDocument(ctx, docID)
	if err != nil {
		return false, err
	}

	start, length, found := findImagePlaceholder(doc.Body.Content)
	if !found {
		return false, nil
	}

	requests := []map[string]any{
		{
			"deleteContentRange": map[string]any{
				"range": map[string]any{"startIndex": start, "endIndex": start + length},
			},
		},
		{
			"insertInlineImage": map[string]any{
				"location": map[string]any{"index": start},
				"uri":      imageURL,
				"objectSize": map[string]any{
					"height": map[string]any{"magnitude": sizePt, "unit": "PT"},
					"width":  map[string]any{"magnitude": sizePt, "unit": "PT"},
				},
			},
		},
	}
	if err := c.batchUpdate(ctx, docID, requests); err != nil {
		return false, err
	}
	return true, nil
}

// BoldText bolds every occurrence of text in the document body, including
// table cells. Text that is not found is not an error.
func (c *Client) BoldText(ctx context.Context, docID, text string) error {
	if text == "" {
		return nil
	}
	doc, err := c.getDocument(ctx, docID)
	if err != nil {
		return err
	}

	ranges := findTextRanges(doc.Body.Content, text)
	if len(ranges) == 0 {
		return nil
	}

	requests := make([]map[string]any, 0, len(ranges))
	for _, r := range ranges {
		requests = append(requests, map[string]any{
			"updateTextStyle": map[string]any{
				"range":     map[string]any{"startIndex": r.start, "endIndex": r.end},
				"textStyle": map[string]any{"bold": true},
				"fields":    "bold",
			},
		})
	}
	return c.batchUpdate(ctx, docID, requests)
}

func (c *Client) batchUpdate(ctx context.Context, docID string, requests []map[string]any) error {
	callURL := fmt.Sprintf("%s/documents/%s:batchUpdate", c.docsURL, url.PathEscape(docID))
	return c.call(ctx, http.MethodPost, callURL, map[string]any{"requests": requests}, nil)
}

func (c *Client) getDocument(ctx context.Context, docID string) (*document, error) {
	callURL := fmt.Sprintf("%s/documents/%s", c.docsURL, url.PathEscape(docID))
	var doc document
	if err := c.call(ctx, http.MethodGet, callURL, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// The slice of the Docs document structure this package reads.
type document struct {
	Body struct {
		Content []structuralElement `json:"content"`
	} `json:"body"`
}

type structuralElement struct {
	Paragraph *paragraph `json:"paragraph,omitempty"`
	Table     *table     `json:"table,omitempty"`
}

type paragraph struct {
	Elements []paragraphElement `json:"elements"`
}

type paragraphElement struct {
	StartIndex int64    `json:"startIndex"`
	TextRun    *textRun `json:"textRun,omitempty"`
}

type textRun struct {
	Content string `json:"content"`
}

type table struct {
	TableRows []tableRow `json:"tableRows"`
}

type tableRow struct {
	TableCells []tableCell `json:"tableCells"`
}

type tableCell struct {
	Content []structuralElement `json:"content"`
}

// imagePlaceholders lists the accepted photo markers. Some templates carry
// stray spaces inside the brackets.
var imagePlaceholders = []string{"<picture>", "< picture >", "<pic>", "< pic >"}

// utf16Len measures s in UTF-16 code units, the unit the Docs API counts
// document indexes in. Byte offsets diverge as soon as a run contains a
// character like Ñ.
func utf16Len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}

// findImagePlaceholder walks paragraphs and table cells for the first photo
// placeholder and returns its absolute start index and length.
func findImagePlaceholder(elements []structuralElement) (start, length int64, found bool) {
	for _, element := range elements {
		if element.Paragraph != nil {
			for _, pe := range element.Paragraph.Elements {
				if pe.TextRun == nil {
					continue
				}
				lower := strings.ToLower(pe.TextRun.Content)
				for _, placeholder := range imagePlaceholders {
					if idx := strings.Index(lower, placeholder); idx >= 0 {
						return pe.StartIndex + utf16Len(lower[:idx]), utf16Len(placeholder), true
					}
				}
			}
		}
		if element.Table != nil {
			for _, row := range element.Table.TableRows {
				for _, cell := range row.TableCells {
					if s, l, ok := findImagePlaceholder(cell.Content); ok {
						return s, l, true
					}
				}
			}
		}
	}
	return 0, 0, false
}

type textRange struct {
	start, end int64
}

// findTextRanges collects the absolute range of each occurrence of text
// within single text runs, in paragraphs and table cells.
func findTextRanges(elements []structuralElement, text string) []textRange {
	var ranges []textRange
	for _, element := range elements {
		if element.Paragraph != nil {
			for _, pe := range element.Paragraph.Elements {
				if pe.TextRun == nil {
					continue
				}
				if idx := strings.Index(pe.TextRun.Content, text); idx >= 0 {
					start := pe.StartIndex + utf16Len(pe.TextRun.Content[:idx])
					ranges = append(ranges, textRange{start: start, end: start + utf16Len(text)})
				}
			}
		}
		if element.Table != nil {
			for _, row := range element.Table.TableRows {
				for _, cell := range row.TableCells {
					ranges = append(ranges, findTextRanges(cell.Content, text)...)
				}
			}
		}
	}
	return ranges
}
