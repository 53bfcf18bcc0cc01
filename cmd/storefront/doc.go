// Command storefront is the Sparkle Crackers storefront CLI.
//
// Shopper commands talk to the REST API at API_BASE_URL (or --api) and keep
// the session in the configured session store, so a login survives between
// invocations:
//
//	storefront login --email asha@example.com
//	storefront products --category rockets
//	storefront cart add <product-id> --qty 2
//	storefront checkout --method upi
//	storefront orders track <order-id>
//
// The sandbox API the shopper commands use during development is served by
// the same binary:
//
//	storefront migrate
//	storefront seed
//	storefront serve
package main
