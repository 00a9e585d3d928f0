// Package schema holds the lifecycle helpers shared by every entity: external
// id generation, href derivation, related-reference resolution and timestamp
// maintenance. Each helper is a plain function that services call explicitly
// while building or updating an entity.
package schema
