package walrus

import (
	"encoding/json"
	"fmt"
)

// storeResponse is the publisher's response envelope. Exactly one branch is
// set: newlyCreated for a fresh upload, alreadyCertified when the content
// was stored before. Anything else is an unrecognized shape and is
// rejected instead of scanned for plausible fields.
type storeResponse struct {
	NewlyCreated     *newlyCreated     `json:"newlyCreated"`
	AlreadyCertified *alreadyCertified `json:"alreadyCertified"`
}

type newlyCreated struct {
	BlobObject blobObject `json:"blobObject"`
}

type blobObject struct {
	ID     string `json:"id"`
	BlobID string `json:"blobId"`
	Size   int64  `json:"size"`
}

type alreadyCertified struct {
	BlobID   string `json:"blobId"`
	EndEpoch int64  `json:"endEpoch"`
}

// StoreResult is the normalized outcome of a publisher store call.
type StoreResult struct {
	BlobID    string
	SizeBytes int64
	// Reused is true when the publisher reported the blob as already
	// certified instead of newly created.
	Reused bool
}

func (r storeResponse) result() (StoreResult, error) {
	switch {
	case r.NewlyCreated != nil && r.NewlyCreated.BlobObject.BlobID != "":
		return StoreResult{
			BlobID:    r.NewlyCreated.BlobObject.BlobID,
			SizeBytes: r.NewlyCreated.BlobObject.Size,
		}, nil
	case r.AlreadyCertified != nil && r.AlreadyCertified.BlobID != "":
		return StoreResult{BlobID: r.AlreadyCertified.BlobID, Reused: true}, nil
	default:
		return StoreResult{}, fmt.Errorf("unrecognized publisher response shape")
	}
}

// lookupEnvelope covers the known aggregator hash-lookup shapes: a bare
// JSON string, an object with one of the known blob-id keys, or an array
// of such objects.
type lookupEnvelope struct {
	BlobID string `json:"blobId"`
	BlobID2 string `json:"blob_id"`
	ID     string `json:"id"`
	Blob   string `json:"blob"`
}

func (e lookupEnvelope) blobID() string {
	for _, candidate := range []string{e.BlobID, e.BlobID2, e.ID, e.Blob} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func decodeLookupBlobID(body []byte) (string, error) {
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil && asString != "" {
		return asString, nil
	}

	var asObject lookupEnvelope
	if err := json.Unmarshal(body, &asObject); err == nil {
		if id := asObject.blobID(); id != "" {
			return id, nil
		}
	}

	var asArray []lookupEnvelope
	if err := json.Unmarshal(body, &asArray); err == nil {
		for _, item := range asArray {
			if id := item.blobID(); id != "" {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("unrecognized aggregator response shape")
}
