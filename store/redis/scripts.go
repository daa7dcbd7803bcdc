package redis

import goredis "github.com/redis/go-redis/v9"

// Script results shared with the Go side.
const (
	createOK             int64 = 0
	createDuplicateEmail int64 = 1
	createDuplicateFed   int64 = 2

	tokenOK              int64 = 0
	tokenAccountMissing  int64 = 1
	tokenDuplicateRecord int64 = 2
)

// KEYS: account, email index, federated index. ARGV: id, account json, has-federated flag.
const createAccountScript = `
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 1
end
if ARGV[3] == "1" and redis.call("EXISTS", KEYS[3]) == 1 then
  return 2
end
redis.call("SET", KEYS[1], ARGV[2])
redis.call("SET", KEYS[2], ARGV[1])
if ARGV[3] == "1" then
  redis.call("SET", KEYS[3], ARGV[1])
end
return 0
`

// KEYS: account, token, account token set, expiry index.
// ARGV: token hash, account id, expires (ms), created (ms).
const createTokenScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 1
end
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 2
end
redis.call("HSET", KEYS[2], "account", ARGV[2], "exp", ARGV[3], "revoked", "0", "created", ARGV[4])
redis.call("SADD", KEYS[3], ARGV[1])
redis.call("ZADD", KEYS[4], ARGV[3], ARGV[1])
return 0
`

// KEYS: token, revoked index. ARGV: now (ms), token hash.
const revokeTokenScript = `
local v = redis.call("HMGET", KEYS[1], "revoked", "exp")
if not v[1] or v[1] == "1" then
  return 0
end
if tonumber(v[2]) <= tonumber(ARGV[1]) then
  return 0
end
redis.call("HSET", KEYS[1], "revoked", "1")
redis.call("SADD", KEYS[2], ARGV[2])
return 1
`

// KEYS: account token set, revoked index. ARGV: now (ms), token key prefix.
const revokeAllScript = `
local now = tonumber(ARGV[1])
local n = 0
for _, hash in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  local key = ARGV[2] .. hash
  local v = redis.call("HMGET", key, "revoked", "exp")
  if v[1] == "0" and tonumber(v[2]) > now then
    redis.call("HSET", key, "revoked", "1")
    redis.call("SADD", KEYS[2], hash)
    n = n + 1
  end
end
return n
`

// KEYS: expiry index, revoked index. ARGV: now (ms), token key prefix, account token set prefix.
const purgeScript = `
local seen = {}
local n = 0
local function drop(hash)
  if seen[hash] then
    return
  end
  seen[hash] = true
  local key = ARGV[2] .. hash
  local account = redis.call("HGET", key, "account")
  n = n + redis.call("DEL", key)
  if account then
    redis.call("SREM", ARGV[3] .. account, hash)
  end
  redis.call("ZREM", KEYS[1], hash)
  redis.call("SREM", KEYS[2], hash)
end
for _, hash in ipairs(redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])) do
  drop(hash)
end
for _, hash in ipairs(redis.call("SMEMBERS", KEYS[2])) do
  drop(hash)
end
return n
`

var (
	createAccountLua = goredis.NewScript(createAccountScript)
	createTokenLua   = goredis.NewScript(createTokenScript)
	revokeTokenLua   = goredis.NewScript(revokeTokenScript)
	revokeAllLua     = goredis.NewScript(revokeAllScript)
	purgeLua         = goredis.NewScript(purgeScript)
)
