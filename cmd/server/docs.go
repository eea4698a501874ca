// Package main Storefront Admin Role API
//
//	@title						Storefront Admin Role API
//	@version					1.0
//	@description				Admin role lookup and invite acceptance reconciliation.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@securityDefinitions.apikey	WebhookSecret
//	@in							header
//	@name						X-Webhook-Secret
//
//	@tag.name					Roles
//	@tag.description			Admin role resolution
//
//	@tag.name					Invites
//	@tag.description			Invite acceptance webhook and operator replay
package main
