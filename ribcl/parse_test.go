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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The firmware answers every request with a stream of concatenated xml
// documents, one per processed element, each carrying its own declaration.
const fwVersionResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
</RIBCL>
<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_FW_VERSION
  FIRMWARE_VERSION = "2.73"
  FIRMWARE_DATE = "Feb 11 2020"
  MANAGEMENT_PROCESSOR = "iLO4"
  LICENSE_TYPE = "iLO 4 Advanced"
  />
</RIBCL>
<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
</RIBCL>
`

const loginFailedResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x005f"
    MESSAGE='Login failed.'
     />
</RIBCL>
`

const serverNameResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<SERVER_NAME VALUE="superserver1"/>
</RIBCL>
`

const productNameResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_PRODUCT_NAME>
  <PRODUCT_NAME VALUE="ProLiant DL360 Gen9"/>
</GET_PRODUCT_NAME>
</RIBCL>
`

const embeddedHealthResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_EMBEDDED_HEALTH_DATA>
  <FANS>
    <FAN>
      <LABEL VALUE = "Fan 1"/>
      <ZONE VALUE = "System"/>
      <STATUS VALUE = "OK"/>
      <SPEED VALUE = "23" UNIT="Percentage"/>
    </FAN>
  </FANS>
  <HEALTH_AT_A_GLANCE>
    <BIOS_HARDWARE STATUS = "OK"/>
    <FANS STATUS = "OK"/>
    <FANS REDUNDANCY = "REDUNDANT"/>
    <POWER_SUPPLIES STATUS = "OK"/>
    <POWER_SUPPLIES REDUNDANCY = "REDUNDANT"/>
  </HEALTH_AT_A_GLANCE>
</GET_EMBEDDED_HEALTH_DATA>
</RIBCL>
`

func Test_Decode_MultiDocumentStream(t *testing.T) {
	assert := assert.New(t)

	fw, err := DecodeFirmware([]byte(fwVersionResponse))
	assert.Nil(err)
	assert.NotNil(fw)
	assert.Equal("2.73", fw.FirmwareVersion)
	assert.Equal("Feb 11 2020", fw.FirmwareDate)
	assert.Equal("iLO4", fw.ManagementProcessor)

	// a stream without the payload decodes clean but yields nothing
	fw, err = DecodeFirmware([]byte(serverNameResponse))
	assert.Nil(err)
	assert.Nil(fw)
}

func Test_CheckResponse(t *testing.T) {
	statusDoc := func(status, message string) string {
		return fmt.Sprintf(`<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="%s"
    MESSAGE='%s'
     />
</RIBCL>
`, status, message)
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name: "No Error",
			body: statusDoc("0x0000", "No error"),
		},
		{
			name: "Short Zero Status",
			body: statusDoc("0x0", "No error"),
		},
		{
			name:    "Login Failed Message",
			body:    statusDoc("0x005f", "Login failed."),
			wantErr: ErrAuthFailed,
		},
		{
			name:    "Login Credentials Message",
			body:    statusDoc("0x000a", "Login credentials rejected."),
			wantErr: ErrAuthFailed,
		},
		{
			name:    "Syntax Error",
			body:    statusDoc("0x0002", "Syntax error: Line #3"),
			wantErr: ErrUnsupportedRequest,
		},
		{
			name:    "Unsupported Feature",
			body:    statusDoc("0x003c", "Feature not supported"),
			wantErr: ErrUnsupportedRequest,
		},
		{
			name:    "Unrecognized Command",
			body:    statusDoc("0x0001", "Unrecognized keyword GET_TPM_STATUS"),
			wantErr: ErrUnsupportedRequest,
		},
		{
			name:    "Unclassified Status",
			body:    statusDoc("0x00ff", "Internal error"),
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "Truncated Document",
			body:    `<?xml version="1.0"?><RIBCL VERSION="2.23"><RESPONSE STATUS="0x0000"`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "Empty Body",
			body:    "",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "No RIBCL Documents",
			body:    `<HTML><BODY>login page</BODY></HTML>`,
			wantErr: ErrMalformedResponse,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := CheckResponse([]byte(test.body))
			if test.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.True(t, errors.Is(err, test.wantErr), "got %v, want %v", err, test.wantErr)
		})
	}
}

func Test_DecodeEmbeddedHealth(t *testing.T) {
	assert := assert.New(t)

	health, err := DecodeEmbeddedHealth([]byte(embeddedHealthResponse))
	assert.Nil(err)
	assert.NotNil(health)

	// sections the controller generation lacks decode to nil
	assert.Nil(health.Temperature)
	assert.Nil(health.Storage)
	assert.Nil(health.Network())

	assert.NotNil(health.Fans)
	assert.Len(health.Fans.Fans, 1)
	assert.Equal("Fan 1", health.Fans.Fans[0].Label.Value)
	assert.Equal("23", health.Fans.Fans[0].Speed.Value)
	assert.Equal("Percentage", health.Fans.Fans[0].Speed.Unit)

	// status and redundancy arrive as separate repeated elements
	assert.NotNil(health.Health)
	assert.Equal("OK", health.Health.Fans.Status())
	assert.Equal("REDUNDANT", health.Health.Fans.Redundancy())
	assert.Equal("REDUNDANT", health.Health.PowerSupplies.Redundancy())
	assert.Equal("", health.Health.Memory.Status())
}

func Test_DecodeNames(t *testing.T) {
	assert := assert.New(t)

	name, err := DecodeServerName([]byte(serverNameResponse))
	assert.Nil(err)
	assert.Equal("superserver1", name)

	product, err := DecodeProductName([]byte(productNameResponse))
	assert.Nil(err)
	assert.Equal("ProLiant DL360 Gen9", product)

	_, err = DecodeServerName([]byte(loginFailedResponse))
	assert.True(errors.Is(err, ErrAuthFailed))
}

func Test_BuildRequest(t *testing.T) {
	assert := assert.New(t)

	body, err := BuildRequest("admin", "secret", "SERVER_INFO", "GET_EMBEDDED_HEALTH")
	assert.Nil(err)

	payload := string(body)
	assert.True(strings.HasPrefix(payload, "<?xml"))
	assert.Contains(payload, `USER_LOGIN="admin"`)
	assert.Contains(payload, `PASSWORD="secret"`)
	assert.Contains(payload, `<SERVER_INFO MODE="read">`)
	assert.Contains(payload, "<GET_EMBEDDED_HEALTH></GET_EMBEDDED_HEALTH>")
}

func Test_ClassifyError(t *testing.T) {
	assert := assert.New(t)

	// sentinels pass through untouched
	err := ClassifyError(fmt.Errorf("wrapped: %w", ErrAuthFailed))
	assert.True(errors.Is(err, ErrAuthFailed))

	err = ClassifyError(fmt.Errorf("deadline: %w", context.DeadlineExceeded))
	assert.True(errors.Is(err, ErrTimeout))

	err = ClassifyError(errors.New("dial tcp 10.0.0.1:443: connect: connection refused"))
	assert.True(errors.Is(err, ErrUnreachable))

	assert.Nil(ClassifyError(nil))
}
