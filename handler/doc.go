// Package handler exposes the engine over echo: the session lifecycle
// endpoints and the administrative account mutations. Handlers own HTTP
// concerns only; every state transition lives in the engine.
package handler
