// Package rate implements Redis-backed fixed-window counters for login and
// refresh throttling. The limiter is optional: engines built without a
// Redis client skip throttling entirely.
package rate
