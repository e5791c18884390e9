// Package gvp acquires Smithsonian Global Volcanism Program "Volcanoes of
// the World" datasets over WFS and serves them as typed collections.
//
// # Acquisition and Caching
//
// Downloader maps each Dataset to a fixed WFS GetFeature request and keeps
// the response on disk next to a JSON metadata sidecar. Freshness is
// presence-based: a dataset whose payload and sidecar both exist is served
// from disk indefinitely, with no TTL, until ForceRefresh or ClearCache.
// A corrupt or missing sidecar reads as a cache miss, never as an error.
//
// Raw payloads get a repair pass before persisting: the upstream service
// emits a malformed "(< " byte sequence inside some text fields, which is
// rewritten to "(&lt; " unconditionally.
//
// # Database Modes
//
// Two facades expose the data behind the shared Database interface.
// LocalDatabase loads one volcano CSV eagerly at construction, falling back
// to the cached holocene_volcanoes dataset when no path is given.
// WebDatabase performs no I/O at construction; datasets are fetched by
// explicit GetVolcanoes and GetEruptions calls. Invoking a web-mode accessor
// on a local database fails with ErrWrongMode.
package gvp
