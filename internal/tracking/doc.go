// Package tracking owns the tracker output consumed by the overlay pipeline.
//
// Responsibilities: the per-frame bounding box record (TrackingBbox), the
// frame-indexed result set (Results), track identifier enumeration, and
// loading results from MOT text, JSON and CBOR files.
//
// Boxes are produced upstream and are read-only here. Frame indices are
// zero-based and expected to match the decode order of the video.
package tracking
