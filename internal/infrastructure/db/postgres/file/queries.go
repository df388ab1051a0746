package file

const (
	columns = `id, owner_id, name, mime_type, size_bytes, storage_path, share_token, created_at, download_count, last_downloaded_at`

	ShareTokenConstraint = "files_share_token_key"

	InsertFile = `
		INSERT INTO files (id, owner_id, name, mime_type, size_bytes, storage_path, share_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns

	SelectOwnerFiles = `
		SELECT ` + columns + `
		FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`
	SelectFileByID = `
		SELECT ` + columns + `
		FROM files
		WHERE id = $1
	`
	SelectFileByShareToken = `
		SELECT ` + columns + `
		FROM files
		WHERE share_token = $1
	`
	IncrementDownloadCount = `
		UPDATE files
		SET download_count = download_count + 1, last_downloaded_at = now()
		WHERE id = $1
	`
	DeleteFileByOwner = `
		DELETE FROM files
		WHERE id = $1 AND owner_id = $2
	`
)
