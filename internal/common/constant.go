package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AccessTokenHeaderName = "Authorization"

// MaxRecordSize is the hard per-record ceiling enforced by the document
// store. A primary record serializing above this fails non-retryably.
const MaxRecordSize = 1024 * 1024

// ExternalizeSizeThreshold is the serialized-payload size above which photos
// are moved to blob storage before the primary write. It sits below
// MaxRecordSize to leave headroom for metadata growth.
const ExternalizeSizeThreshold = 700 * 1024

// MaxInlinePhotos is the number of photos an artifact may keep inline before
// externalization kicks in regardless of payload size.
const MaxInlinePhotos = 2

// EmailRetryCap is the number of dispatch attempts an email backup record
// gets before it is permanently skipped (but retained).
const EmailRetryCap = 3

// MediaUploadBatchSize limits how many photo uploads run concurrently within
// one artifact's externalization pass.
const MediaUploadBatchSize = 3
