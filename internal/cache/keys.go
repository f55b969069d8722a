package cache

import "strings"

const keyPrefix = "ledger"

// globEscaper backslash-escapes the characters Redis treats as glob syntax
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// globUnescaper reverses globEscaper for matchers that compare literal prefixes
var globUnescaper = strings.NewReplacer(`\\`, `\`, `\*`, `*`, `\?`, `?`, `\[`, `[`, `\]`, `]`)

func WarehouseKey(tenantID, warehouseID string) string {
	return keyPrefix + ":" + tenantID + ":warehouse:" + warehouseID
}

func OrderKey(tenantID, orderID string) string {
	return keyPrefix + ":" + tenantID + ":order:" + orderID
}

// TenantPattern matches every cached read model of a tenant. The tenant id is
// escaped so a tenant named "t*" cannot match the keys of tenant "tx".
func TenantPattern(tenantID string) string {
	return keyPrefix + ":" + globEscaper.Replace(tenantID) + ":*"
}

// IdempotencyKey lives outside the ledger prefix so tenant invalidation never touches it
func IdempotencyKey(replayKey string) string {
	return "idempotency:" + replayKey
}
