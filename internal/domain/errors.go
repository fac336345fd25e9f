package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoAccounts           = errors.New("no accounts configured")
	ErrProxyShortage        = errors.New("not enough proxies for accounts")
	ErrSessionNotFound      = errors.New("session not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrProtocolMismatch     = errors.New("request rejected by server, api contract may have changed")
	ErrNoEndpoint           = errors.New("no reachable api endpoint")
)

type ProxyShortageError struct {
	Accounts int
	Proxies  int
}

func (e *ProxyShortageError) Error() string {
	return fmt.Sprintf("proxy count must cover account count (accounts: %d, proxies: %d)", e.Accounts, e.Proxies)
}

func (e *ProxyShortageError) Unwrap() error {
	return ErrProxyShortage
}
