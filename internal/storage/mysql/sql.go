package mysql

const insertDraftSQL = `
INSERT INTO inventory_check_drafts
  (id, hotel_id, note, items, staged, updated_at, version)
VALUES
  (?, ?, ?, ?, ?, ?, 1)
`

const updateDraftSQL = `
UPDATE inventory_check_drafts
SET note       = ?,
    items      = ?,
    staged     = ?,
    updated_at = ?,
    version    = version + 1
WHERE id = ? AND version = ?
`

const getDraftSQL = `
SELECT id, hotel_id, note, items, staged, updated_at, version
FROM inventory_check_drafts
WHERE id = ?
`

const listDraftsSQL = `
SELECT id, hotel_id, note, items, staged, updated_at, version
FROM inventory_check_drafts
WHERE hotel_id = ?
ORDER BY updated_at DESC, id
`

const deleteDraftSQL = `DELETE FROM inventory_check_drafts WHERE id = ?`

const claimDraftSQL = `DELETE FROM inventory_check_drafts WHERE id = ? AND version = ?`
