// Package models defines the data shapes shared by the parthero packages.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from, or encoded for, the orchestra API
//   - [PartAsset] : an uploaded file (clean part, bowing) attached to a piece
//   - [Part] : a single instrument part an asset covers
//   - [PartAssetList] : the response of the asset listing endpoint
//
// 2. Persistent Entities: rows kept in the local SQLite database
//   - [Preference] : a namespaced key/value client preference such as a table page size
//   - [UploadRecord] : the outcome of one upload attempt
//
// Persistent entities implement [Model]; [Repository] defines CRUD access for them.
package models
