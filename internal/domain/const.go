package domain

const (
	// Post extra data keys carrying the author grant marker
	EXTRA_DATA_EXPIRATION_DATE = "expiration_date"
	EXTRA_DATA_NFT_TYPE        = "nft_type"

	// Default identity values of the Spatium deployment
	DEFAULT_PLATFORM_PUBLIC_KEY = "BC1YLg9piUDwrwTZfRipfXNq3hW3RZHW3fJZ7soDNNNnftcqrJvyrbq"
	DEFAULT_ASSOCIATION_TYPE    = "Spatium Author"
	DEFAULT_AUTHOR_NFT_TYPE     = "Spatium Author"

	// Default service endpoints
	DEFAULT_DESO_NODE_URL   = "https://node.deso.org"
	DEFAULT_APP_SERVICE_URL = "https://api.spatiumstories.xyz"
)

const (
	// NATS subjects
	SUBJECT_CHECK_TRIGGER       = "jobs.author-associations.check"
	SUBJECT_ASSOCIATION_REVOKED = "authors.associations.revoked"
)
