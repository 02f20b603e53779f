package redis

const keyPrefix = "lineup:"

func sessionKey(sessionID string) string {
	return keyPrefix + "session:" + sessionID
}

func sessionLockKey(sessionID string) string {
	return keyPrefix + "lock:session:" + sessionID
}
