// Package notifications delivers workflow lifecycle updates to an ntfy
// topic. Without a configured topic the service degrades to a noop so the
// pipeline never depends on push delivery.
package notifications
