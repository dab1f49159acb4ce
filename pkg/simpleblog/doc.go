// Package simpleblog provides a library for managing editorial content items
// ("blogs") through a draft/publish lifecycle, with binary assets stored
// through a two-tier storage gateway (remote content-addressed backend with
// local filesystem fallback).
//
// It exposes a single Service interface that orchestrates draft creation,
// publishing, partial updates, soft/hard deletion and filtered listing.
// Implementations of repositories (e.g., memory, Postgres) and blob stores
// (e.g., memory, filesystem, S3) are provided under subpackages.
//
// Lifecycle Invariant
//
// A blog's Status and PublishedAt are written together, only by the Service:
// a PUBLISHED blog always carries a publish timestamp and a DRAFT blog never
// does. Asset uploads strictly precede the record mutation that references
// them, so a persisted record never points at an asset that was not stored.
package simpleblog
