package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Timestamp validation bounds. Timestamps outside this range are treated as
// missing and a warning is logged.
const (
	minValidYear = 1970
	maxValidYear = 2100
)

// conflictRename makes the server pick a fresh name ("New Folder 1") instead
// of failing when a folder with the same name already exists.
const conflictRename = "rename"

// modeledKeys are the driveItem attributes Item carries as typed fields.
// Everything else lands in Item.Extra. The file and folder facets stay in
// Extra since only mimeType and childCount are surfaced from them.
var modeledKeys = []string{
	"id", "name", "size", "webUrl", "createdDateTime", "lastModifiedDateTime",
}

// encodePathSegments URL-encodes each segment of a slash-separated path.
// Characters like #, ?, %, and spaces are encoded per-segment so the
// resulting path is safe for interpolation into Graph API URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}

// cleanDrivePath trims surrounding slashes and NFC-normalizes a
// root-relative drive path. "" and "/" both yield "" (the root).
func cleanDrivePath(p string) string {
	return norm.NFC.String(strings.Trim(p, "/"))
}

// childrenPath returns the children endpoint for a root-relative folder path.
func childrenPath(folderPath string) string {
	clean := cleanDrivePath(folderPath)
	if clean == "" {
		return "/me/drive/root/children"
	}

	return "/me/drive/root:/" + encodePathSegments(clean) + ":/children"
}

// itemPath returns the endpoint for a single item addressed by ID.
func itemPath(itemID string) string {
	return "/me/drive/items/" + url.PathEscape(itemID)
}

// searchPath builds the search endpoint. The query is embedded as an OData
// string literal, so single quotes are doubled, then the whole literal is
// percent-encoded as a path segment so '#', '?' and '/' cannot escape it.
func searchPath(query string) string {
	literal := strings.ReplaceAll(norm.NFC.String(query), "'", "''")

	return "/me/drive/root/search(q='" + url.PathEscape(literal) + "')"
}

// driveItemResponse mirrors the subset of the Graph API driveItem JSON that
// Item models. Unexported; callers use Item via decodeItem.
type driveItemResponse struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Size                 int64        `json:"size"`
	WebURL               string       `json:"webUrl"`
	CreatedDateTime      string       `json:"createdDateTime"`
	LastModifiedDateTime string       `json:"lastModifiedDateTime"`
	File                 *fileFacet   `json:"file"`
	Folder               *folderFacet `json:"folder"`
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

type folderFacet struct {
	ChildCount *int `json:"childCount,omitempty"`
}

type listChildrenResponse struct {
	Value []json.RawMessage `json:"value"`
}

type createFolderRequest struct {
	Name             string      `json:"name"`
	Folder           folderFacet `json:"folder"`
	ConflictBehavior string      `json:"@microsoft.graph.conflictBehavior"` //nolint:tagliatelle // Graph API annotation key
}

// decodeItem decodes one driveItem object into an Item, keeping unmodeled
// attributes in Extra.
func decodeItem(raw json.RawMessage, logger *slog.Logger) (Item, error) {
	var d driveItemResponse
	if err := json.Unmarshal(raw, &d); err != nil {
		return Item{}, fmt.Errorf("graph: decoding item: %w", err)
	}

	var extra map[string]json.RawMessage
	if err := json.Unmarshal(raw, &extra); err != nil {
		return Item{}, fmt.Errorf("graph: decoding item attributes: %w", err)
	}

	for _, k := range modeledKeys {
		delete(extra, k)
	}

	item := Item{
		ID:         d.ID,
		Name:       d.Name,
		Size:       d.Size,
		IsFolder:   d.Folder != nil,
		WebURL:     d.WebURL,
		ChildCount: ChildCountUnknown,
		Extra:      extra,
	}

	if d.Folder != nil && d.Folder.ChildCount != nil {
		item.ChildCount = *d.Folder.ChildCount
	}

	if d.File != nil {
		item.MimeType = d.File.MimeType
	}

	item.CreatedAt = parseTimestamp(d.CreatedDateTime, "createdDateTime", d.ID, logger)
	item.ModifiedAt = parseTimestamp(d.LastModifiedDateTime, "lastModifiedDateTime", d.ID, logger)

	return item, nil
}

// decodeItemList decodes a collection response. The result is never nil.
func decodeItemList(list *listChildrenResponse, logger *slog.Logger) ([]Item, error) {
	items := make([]Item, 0, len(list.Value))

	for _, raw := range list.Value {
		item, err := decodeItem(raw, logger)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// parseTimestamp parses an RFC3339 timestamp and validates the year range.
// Missing, invalid, or out-of-range timestamps yield the zero time.
func parseTimestamp(raw, field, itemID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp, ignoring",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Time{}
	}

	if t.Year() < minValidYear || t.Year() > maxValidYear {
		logger.Warn("timestamp out of valid range, ignoring",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}

// callItem issues a request whose response is a single driveItem.
// An empty response yields an Item with no attributes.
func (c *Client) callItem(ctx context.Context, method, apiPath string, in any) (*Item, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, method, apiPath, in, &raw); err != nil {
		return nil, err
	}

	return c.itemFromRaw(raw)
}

// itemFromRaw decodes a single-item response body. An empty body yields an
// Item with no attributes.
func (c *Client) itemFromRaw(raw json.RawMessage) (*Item, error) {
	if len(raw) == 0 {
		return &Item{ChildCount: ChildCountUnknown}, nil
	}

	item, err := decodeItem(raw, c.logger)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// callItemList issues a GET whose response is a driveItem collection.
// Only the first page is read; @odata.nextLink is ignored.
func (c *Client) callItemList(ctx context.Context, apiPath string) ([]Item, error) {
	var list listChildrenResponse
	if err := c.Call(ctx, http.MethodGet, apiPath, nil, &list); err != nil {
		return nil, err
	}

	return decodeItemList(&list, c.logger)
}

// ListChildren returns the direct children of a folder addressed by its
// root-relative path. An empty path or "/" lists the drive root.
func (c *Client) ListChildren(ctx context.Context, folderPath string) ([]Item, error) {
	c.logger.Info("listing children", slog.String("path", folderPath))

	return c.callItemList(ctx, childrenPath(folderPath))
}

// GetItem retrieves a single drive item by ID.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	c.logger.Info("getting item", slog.String("item_id", itemID))

	return c.callItem(ctx, http.MethodGet, itemPath(itemID), nil)
}

// CreateFolder creates a folder under the given parent path (empty for the
// root). Name collisions are resolved by the server renaming the new folder.
func (c *Client) CreateFolder(ctx context.Context, name, parentPath string) (*Item, error) {
	c.logger.Info("creating folder",
		slog.String("name", name),
		slog.String("parent_path", parentPath),
	)

	req := createFolderRequest{
		Name:             norm.NFC.String(name),
		ConflictBehavior: conflictRename,
	}

	return c.callItem(ctx, http.MethodPost, childrenPath(parentPath), req)
}

// DeleteItem deletes a drive item by ID. The server moves it to the recycle bin.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	c.logger.Info("deleting item", slog.String("item_id", itemID))

	return c.Call(ctx, http.MethodDelete, itemPath(itemID), nil, nil)
}

// Search finds items anywhere in the drive matching query. Single page only.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	c.logger.Info("searching drive", slog.String("query", query))

	return c.callItemList(ctx, searchPath(query))
}
