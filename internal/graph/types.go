package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ChildCountUnknown indicates the child count was not present in the API response.
const ChildCountUnknown = -1

// Item represents a OneDrive drive item (file or folder).
// The fields callers consume are typed; every other attribute of the Graph
// response is kept verbatim in Extra, keyed by its JSON name.
type Item struct {
	ID         string
	Name       string
	Size       int64
	IsFolder   bool
	MimeType   string
	WebURL     string
	CreatedAt  time.Time // zero if missing or invalid
	ModifiedAt time.Time // zero if missing or invalid
	ChildCount int       // ChildCountUnknown if not present

	Extra map[string]json.RawMessage
}

// Kind returns "Folder" or "File".
func (i Item) Kind() string {
	if i.IsFolder {
		return "Folder"
	}

	return "File"
}

// MarshalJSON renders the item back into Graph's shape: the passthrough
// attributes first, overlaid by the typed fields.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+8)
	for k, v := range i.Extra {
		out[k] = v
	}

	out["id"] = i.ID
	out["name"] = i.Name
	out["size"] = i.Size

	if i.WebURL != "" {
		out["webUrl"] = i.WebURL
	}

	if !i.CreatedAt.IsZero() {
		out["createdDateTime"] = i.CreatedAt.Format(time.RFC3339)
	}

	if !i.ModifiedAt.IsZero() {
		out["lastModifiedDateTime"] = i.ModifiedAt.Format(time.RFC3339)
	}

	if i.IsFolder {
		folder, err := i.folderFacet()
		if err != nil {
			return nil, err
		}

		out["folder"] = folder
	}

	return json.Marshal(out)
}

// folderFacet returns the raw folder facet with childCount overlaid, so
// attributes such as view survive a round trip.
func (i Item) folderFacet() (map[string]json.RawMessage, error) {
	folder := map[string]json.RawMessage{}

	if raw, ok := i.Extra["folder"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &folder); err != nil {
			return nil, fmt.Errorf("graph: decoding folder facet: %w", err)
		}
	}

	if i.ChildCount != ChildCountUnknown {
		folder["childCount"] = json.RawMessage(strconv.Itoa(i.ChildCount))
	}

	return folder, nil
}

// User is the signed-in account as returned by /me.
type User struct {
	ID          string
	DisplayName string
	Email       string // mail, or userPrincipalName when mail is empty
}

// LoginResult is the outcome of an interactive browser login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string // empty when the server did not issue one
	Expiry       time.Time
}

// ExpiresIn returns the remaining lifetime of the access token relative to
// now, or zero when the expiry is unknown or already past.
func (r *LoginResult) ExpiresIn(now time.Time) time.Duration {
	if r.Expiry.IsZero() || !r.Expiry.After(now) {
		return 0
	}

	return r.Expiry.Sub(now)
}
