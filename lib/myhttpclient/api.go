package myhttpclient

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=api.go -package myhttpclient -destination httpSender_mock.go HTTPSender
type HTTPSender interface {
	Send(c context.Context, method string, url string, header http.Header, body []byte) (int, []byte, error)
}

func BearerHeader(accessToken string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	return header
}
