package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var client = &http.Client{Timeout: 10 * time.Second}

func GetRequest(url string) (statusCode int, resBody []byte, err error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	resBody, err = io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, resBody, nil
}

func PostRequest(url string, reqBody []byte) (statusCode int, resBody []byte, err error) {
	req, err := http.NewRequest("POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	resBody, err = io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, resBody, nil
}

// GetJSON fetches url and decodes the 2xx response body into out.
func GetJSON(url string, out any) error {
	status, body, err := GetRequest(url)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("status %v: %v", status, string(body))
	}
	return json.Unmarshal(body, out)
}

// PostJSON posts in as JSON to url and decodes the 2xx response into out.
func PostJSON(url string, in, out any) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return err
	}
	status, body, err := PostRequest(url, reqBody)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("status %v: %v", status, string(body))
	}
	return json.Unmarshal(body, out)
}
