package pkg

import "sync"

type HasLocker interface{ GetLocker() *sync.RWMutex }

func LockWrap(i HasLocker, f func() error) error {
	i.GetLocker().Lock()
	defer i.GetLocker().Unlock()
	return f()
}

// RLockGet runs f under the read lock and hands back its result.
func RLockGet[T any](i HasLocker, f func() (T, error)) (T, error) {
	i.GetLocker().RLock()
	defer i.GetLocker().RUnlock()
	return f()
}
