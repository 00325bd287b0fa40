/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	// Schema
	querySchema = `
	-- Every entity of every owner is one JSON document
	CREATE TABLE IF NOT EXISTS documents (
		owner_id TEXT NOT NULL,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner_id, collection, id)
	);

	-- Create index for owner snapshot loads
	CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
	`

	// Document queries
	queryGetDocument = `
		SELECT body
		FROM documents
		WHERE owner_id = ? AND collection = ? AND id = ?`

	queryInsertDocument = `
		INSERT INTO documents (owner_id, collection, id, body)
		VALUES (?, ?, ?, ?)`

	// Upserts keep the original rowid so snapshot order is stable
	queryUpsertDocument = `
		INSERT INTO documents (owner_id, collection, id, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, collection, id)
		DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`

	queryUpdateDocument = `
		UPDATE documents
		SET body = ?, updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND collection = ? AND id = ?`

	queryDeleteDocument = `
		DELETE FROM documents
		WHERE owner_id = ? AND collection = ? AND id = ?`

	queryGetOwnerDocuments = `
		SELECT collection, id, body
		FROM documents
		WHERE owner_id = ?
		ORDER BY rowid`

	// Owner queries
	queryGetOwners = `
		SELECT DISTINCT owner_id
		FROM documents
		ORDER BY owner_id`
)
