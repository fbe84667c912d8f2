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

// Package ribcl speaks the XML scripting protocol of HP iLO management
// controllers. Each request is a self contained document posted over
// HTTPS; the controller answers with a stream of concatenated RIBCL
// documents rather than a single well formed one.
package ribcl

import (
	"encoding/xml"
	"fmt"
)

// Kind names one discrete information request a controller can serve.
type Kind string

const (
	KindFirmware      Kind = "firmware"
	KindPower         Kind = "power"
	KindThermal       Kind = "thermal"
	KindHealthSummary Kind = "health-summary"
	KindMemory        Kind = "memory"
	KindProcessor     Kind = "processor"
	KindFans          Kind = "fans"
	KindPowerSupplies Kind = "power-supplies"
	KindBattery       Kind = "battery"
	KindStorage       Kind = "storage"
	KindNetwork       Kind = "network"
	KindVRM           Kind = "vrm"
)

// Kinds returns every request kind in dispatch order. The order is part
// of the scrape contract: later kinds overwrite overlapping samples from
// earlier ones, so health detail kinds run after the summary.
func Kinds() []Kind {
	return []Kind{
		KindFirmware,
		KindPower,
		KindHealthSummary,
		KindThermal,
		KindFans,
		KindPowerSupplies,
		KindMemory,
		KindProcessor,
		KindNetwork,
		KindStorage,
		KindBattery,
		KindVRM,
	}
}

const (
	sectionServerInfo = "SERVER_INFO"
	sectionRibInfo    = "RIB_INFO"
)

type command struct {
	tag     string
	section string
}

// commands maps each kind onto the RIBCL command that carries its data.
// The embedded health kinds all issue GET_EMBEDDED_HEALTH and differ
// only in which response section they read, which keeps failure
// isolation per kind without inventing commands the firmware lacks.
var commands = map[Kind]command{
	KindFirmware:      {tag: "GET_FW_VERSION", section: sectionRibInfo},
	KindPower:         {tag: "GET_POWER_READINGS", section: sectionServerInfo},
	KindThermal:       {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindHealthSummary: {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindMemory:        {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindProcessor:     {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindFans:          {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindPowerSupplies: {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindBattery:       {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindStorage:       {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindNetwork:       {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
	KindVRM:           {tag: "GET_EMBEDDED_HEALTH", section: sectionServerInfo},
}

// identity commands are not kinds of their own; they feed the
// server_name and product_name labels every family carries.
const (
	cmdGetServerName  = "GET_SERVER_NAME"
	cmdGetProductName = "GET_PRODUCT_NAME"
)

type ribclEnvelope struct {
	XMLName xml.Name     `xml:"RIBCL"`
	Version string       `xml:"VERSION,attr"`
	Login   loginElement `xml:"LOGIN"`
}

type loginElement struct {
	UserLogin string         `xml:"USER_LOGIN,attr"`
	Password  string         `xml:"PASSWORD,attr"`
	Section   sectionElement `xml:",omitempty"`
}

type sectionElement struct {
	XMLName xml.Name
	Mode    string         `xml:"MODE,attr"`
	Command commandElement `xml:",omitempty"`
}

type commandElement struct {
	XMLName xml.Name
}

// BuildRequest renders the login wrapped document for one command tag.
// Every request re-authenticates; the scripting interface holds no
// session across documents.
func BuildRequest(user, password, section, tag string) ([]byte, error) {
	envelope := ribclEnvelope{
		Version: "2.0",
		Login: loginElement{
			UserLogin: user,
			Password:  password,
			Section: sectionElement{
				XMLName: xml.Name{Local: section},
				Mode:    "read",
				Command: commandElement{
					XMLName: xml.Name{Local: tag},
				},
			},
		},
	}

	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("error marshaling %s request - %w", tag, err)
	}
	return append([]byte(xml.Header), body...), nil
}
