// Package auth verifies bearer tokens and maps roles to permissions.
//
// Tokens are HS256 JWTs issued by the operator platform's identity service
// and signed with a shared secret. This service only verifies them; it
// issues tokens for tests and local tooling through GenerateAccessToken.
//
// Roles are coarse and static:
//
//	viewer       read device configuration, subscribe to events
//	operator     viewer + change configuration of existing devices
//	provisioner  operator + create or replace devices
package auth
