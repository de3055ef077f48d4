package dto

// SyncResult salida de POST /api/sync.
type SyncResult struct {
	Success          bool   `json:"success"`
	CategoriesSynced int    `json:"categories_synced"`
	ProductsSynced   int    `json:"products_synced"`
	Message          string `json:"message"`
	RunID            string `json:"run_id,omitempty"`
}

// SyncStatusResponse salida de GET /api/sync. LastSync en RFC 3339 o null.
type SyncStatusResponse struct {
	Categories int     `json:"categories"`
	Products   int     `json:"products"`
	LastSync   *string `json:"last_sync"`
}
