package cron

import (
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
)

// Job names
const (
	JobPurgeResetTokens = "purge_password_reset_tokens"
	JobPurgeBlacklist   = "purge_token_blacklist"
	JobBackfillSlugs    = "backfill_product_slugs"
)

// MaintenanceJobs returns the service's housekeeping jobs
func MaintenanceJobs(resets *services.PasswordResetService, blacklist *auth.BlacklistService, products *services.ProductService) []Job {
	return []Job{
		{
			// Every 15 minutes
			Name:     JobPurgeResetTokens,
			Schedule: "0 */15 * * * *",
			Run:      resets.PurgeExpired,
		},
		{
			// Every hour
			Name:     JobPurgeBlacklist,
			Schedule: "0 0 * * * *",
			Run:      blacklist.CleanupExpiredTokens,
		},
		{
			// Every hour, offset from the blacklist purge
			Name:     JobBackfillSlugs,
			Schedule: "0 30 * * * *",
			Run:      products.BackfillSlugs,
		},
	}
}
