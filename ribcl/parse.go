/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ribcl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// decodeDocuments walks the response stream token by token and decodes
// each top level RIBCL element it finds. The firmware emits one
// document per processed element of the request, each with its own xml
// declaration, so a plain Unmarshal of the body never works.
func decodeDocuments(body []byte) ([]document, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var docs []document
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errorClass(ErrMalformedResponse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "RIBCL" {
			continue
		}
		var doc document
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return nil, errorClass(ErrMalformedResponse, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, errorStatus(ErrMalformedResponse, "", "no RIBCL documents in response")
	}
	return docs, nil
}

// checkStatus scans every RESPONSE element for a non-zero status. The
// firmware reports request level failures inline with HTTP 200, so this
// is where authentication and unsupported command errors surface.
func checkStatus(docs []document) error {
	for _, doc := range docs {
		if doc.Response == nil {
			continue
		}
		if isOKStatus(doc.Response.Status) {
			continue
		}
		return classifyStatus(doc.Response.Status, doc.Response.Message)
	}
	return nil
}

func isOKStatus(status string) bool {
	switch status {
	case "", "0x0000", "0x0", "0":
		return true
	}
	return false
}

// decode parses a response body, surfaces any inline error status, and
// returns the decoded documents for payload extraction.
func decode(body []byte) ([]document, error) {
	docs, err := decodeDocuments(body)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CheckResponse validates a response body without extracting a payload,
// so transport code can classify failures before handing bytes to the
// metric handlers.
func CheckResponse(body []byte) error {
	_, err := decode(body)
	return err
}

// DecodeFirmware extracts the GET_FW_VERSION payload.
func DecodeFirmware(body []byte) (*FirmwareVersion, error) {
	docs, err := decode(body)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.Firmware != nil {
			return doc.Firmware, nil
		}
	}
	return nil, nil
}

// DecodePowerReadings extracts the GET_POWER_READINGS payload.
func DecodePowerReadings(body []byte) (*PowerReadings, error) {
	docs, err := decode(body)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.PowerReadings != nil {
			return doc.PowerReadings, nil
		}
	}
	return nil, nil
}

// DecodeEmbeddedHealth extracts the GET_EMBEDDED_HEALTH_DATA payload.
func DecodeEmbeddedHealth(body []byte) (*EmbeddedHealth, error) {
	docs, err := decode(body)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.EmbeddedHealth != nil {
			return doc.EmbeddedHealth, nil
		}
	}
	return nil, nil
}

// DecodeProductName extracts the GET_PRODUCT_NAME payload.
func DecodeProductName(body []byte) (string, error) {
	docs, err := decode(body)
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if doc.ProductName != nil {
			return doc.ProductName.Name.Value, nil
		}
	}
	return "", nil
}

// DecodeServerName extracts the GET_SERVER_NAME payload.
func DecodeServerName(body []byte) (string, error) {
	docs, err := decode(body)
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if doc.ServerName != nil {
			return doc.ServerName.Value, nil
		}
	}
	return "", nil
}
