/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
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

package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comcast/hpilo-exporter/registry"
	"github.com/comcast/hpilo-exporter/ribcl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

const (
	testServerNameResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<SERVER_NAME VALUE="superserver1"/>
</RIBCL>
`

	testProductNameResponse = `<?xml version="1.0"?>
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

	testUnsupportedResponse = `<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x005b"
    MESSAGE='Syntax error: Line #0: syntax error near ""'
     />
</RIBCL>
`
)

func Test_Exporter_Metrics_Handling(t *testing.T) {
	var (
		GoodFirmwareResponse = []byte(`<?xml version="1.0"?>
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
`)

		GoodPowerResponse = []byte(`<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_POWER_READINGS>
  <PRESENT_POWER_READING VALUE = "180" UNIT = "Watts"/>
  <AVERAGE_POWER_READING VALUE = "178" UNIT = "Watts"/>
  <MAXIMUM_POWER_READING VALUE = "263" UNIT = "Watts"/>
  <MINIMUM_POWER_READING VALUE = "173" UNIT = "Watts"/>
</GET_POWER_READINGS>
</RIBCL>
`)

		GoodHealthResponse = []byte(`<?xml version="1.0"?>
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
    <FAN>
      <LABEL VALUE = "Fan 2"/>
      <ZONE VALUE = "System"/>
      <STATUS VALUE = "Not Installed"/>
      <SPEED VALUE = "0" UNIT="Percentage"/>
    </FAN>
  </FANS>
  <TEMPERATURE>
    <TEMP>
      <LABEL VALUE = "01-Inlet Ambient"/>
      <LOCATION VALUE = "Ambient"/>
      <STATUS VALUE = "OK"/>
      <CURRENTREADING VALUE = "22" UNIT="Celsius"/>
      <CAUTION VALUE = "42" UNIT="Celsius"/>
      <CRITICAL VALUE = "46" UNIT="Celsius"/>
    </TEMP>
    <TEMP>
      <LABEL VALUE = "02-CPU 1"/>
      <LOCATION VALUE = "CPU"/>
      <STATUS VALUE = "OK"/>
      <CURRENTREADING VALUE = "40" UNIT="Celsius"/>
      <CAUTION VALUE = "70" UNIT="Celsius"/>
      <CRITICAL VALUE = "N/A"/>
    </TEMP>
    <TEMP>
      <LABEL VALUE = "03-P1 DIMM 1-4"/>
      <LOCATION VALUE = "Memory"/>
      <STATUS VALUE = "Not Installed"/>
      <CURRENTREADING VALUE = "N/A"/>
      <CAUTION VALUE = "N/A"/>
      <CRITICAL VALUE = "N/A"/>
    </TEMP>
  </TEMPERATURE>
  <POWER_SUPPLIES>
    <POWER_SUPPLY_SUMMARY>
      <PRESENT_POWER_READING VALUE = "180" UNIT = "Watts"/>
      <POWER_MANAGEMENT_CONTROLLER_FIRMWARE_VERSION VALUE = "1.0.9"/>
      <POWER_SYSTEM_REDUNDANCY VALUE = "Redundant"/>
      <HP_POWER_DISCOVERY_SERVICES_REDUNDANCY_STATUS VALUE = "N/A"/>
      <HIGH_EFFICIENCY_MODE VALUE = "Balanced"/>
    </POWER_SUPPLY_SUMMARY>
    <SUPPLY>
      <LABEL VALUE = "Power Supply 1"/>
      <PRESENT VALUE = "Yes"/>
      <STATUS VALUE = "Good, In Use"/>
      <PDS VALUE = "No"/>
      <HOTPLUG_CAPABLE VALUE = "Yes"/>
      <MODEL VALUE = "720478-B21"/>
      <SPARE VALUE = "754377-001"/>
      <SERIAL_NUMBER VALUE = "5DMVC0CLL8T0A0"/>
      <CAPACITY VALUE = "460 Watts"/>
      <FIRMWARE_VERSION VALUE = "1.00"/>
    </SUPPLY>
    <SUPPLY>
      <LABEL VALUE = "Power Supply 2"/>
      <PRESENT VALUE = "No"/>
    </SUPPLY>
  </POWER_SUPPLIES>
  <VRM>
    <MODULE>
      <LABEL VALUE = "VRM 1"/>
      <STATUS VALUE = "OK"/>
    </MODULE>
    <MODULE>
      <LABEL VALUE = "VRM 2"/>
      <STATUS VALUE = "Not Installed"/>
    </MODULE>
  </VRM>
  <PROCESSORS>
    <PROCESSOR>
      <LABEL VALUE = "Proc 1"/>
      <NAME VALUE = "Intel(R) Xeon(R) CPU E5-2640 v3 @ 2.60GHz"/>
      <STATUS VALUE = "OK"/>
      <SPEED VALUE = "2600 MHz"/>
      <INTERNAL_L1_CACHE VALUE = "512 KB"/>
      <INTERNAL_L2_CACHE VALUE = "2048 KB"/>
      <INTERNAL_L3_CACHE VALUE = "20480 KB"/>
    </PROCESSOR>
    <PROCESSOR>
      <LABEL VALUE = "Proc 2"/>
      <STATUS VALUE = "Not Installed"/>
    </PROCESSOR>
  </PROCESSORS>
  <MEMORY>
    <ADVANCED_MEMORY_PROTECTION VALUE = "Advanced ECC"/>
    <MEMORY_DETAILS_SUMMARY>
      <CPU_1>
        <NUMBER_OF_SOCKETS VALUE = "12"/>
        <TOTAL_MEMORY_SIZE VALUE = "32768 MB"/>
        <OPERATING_FREQUENCY VALUE = "2133 MHz"/>
        <OPERATING_VOLTAGE VALUE = "1.2 v"/>
      </CPU_1>
      <CPU_2>
        <NUMBER_OF_SOCKETS VALUE = "12"/>
        <TOTAL_MEMORY_SIZE VALUE = "32768 MB"/>
        <OPERATING_FREQUENCY VALUE = "2133 MHz"/>
        <OPERATING_VOLTAGE VALUE = "1.2 v"/>
      </CPU_2>
    </MEMORY_DETAILS_SUMMARY>
    <MEMORY_DETAILS>
      <CPU_1>
        <SOCKET>
          <SOCKET_NUM VALUE = "1"/>
          <STATUS VALUE = "Good, In Use"/>
          <HP_SMART_MEMORY VALUE = "Yes"/>
          <PART NUMBER = "752368-081"/>
          <TYPE VALUE = "DIMM DDR4"/>
          <SIZE VALUE = "8192 MB"/>
          <FREQUENCY VALUE = "2133 MHz"/>
        </SOCKET>
        <SOCKET>
          <SOCKET_NUM VALUE = "2"/>
          <STATUS VALUE = "Not Installed"/>
        </SOCKET>
      </CPU_1>
    </MEMORY_DETAILS>
  </MEMORY>
  <NIC_INFORMATION>
    <ILO>
      <NETWORK_PORT VALUE = "iLO Dedicated Network Port"/>
      <PORT_DESCRIPTION VALUE = "iLO Dedicated Network Port"/>
      <LOCATION VALUE = "Embedded"/>
      <MAC_ADDRESS VALUE = "aa:bb:cc:dd:ee:ff"/>
      <IP_ADDRESS VALUE = "10.20.30.40"/>
      <STATUS VALUE = "OK"/>
    </ILO>
    <NIC>
      <NETWORK_PORT VALUE = "Port 1"/>
      <PORT_DESCRIPTION VALUE = "HP Ethernet 1Gb 4-port 331i Adapter"/>
      <LOCATION VALUE = "Embedded"/>
      <MAC_ADDRESS VALUE = "11:22:33:44:55:66"/>
      <IP_ADDRESS VALUE = "N/A"/>
      <STATUS VALUE = "Unknown"/>
    </NIC>
  </NIC_INFORMATION>
  <STORAGE>
    <CONTROLLER>
      <LABEL VALUE = "Controller on System Board"/>
      <STATUS VALUE = "OK"/>
      <CONTROLLER_STATUS VALUE = "OK"/>
      <SERIAL_NUMBER VALUE = "PDNLH0BRH7V7BC"/>
      <MODEL VALUE = "Smart Array P440ar Controller"/>
      <FW_VERSION VALUE = "6.06"/>
      <CACHE_MODULE_STATUS VALUE = "OK"/>
      <LOGICAL_DRIVE>
        <LABEL VALUE = "01"/>
        <STATUS VALUE = "OK"/>
        <CAPACITY VALUE = "279 GB"/>
        <FAULT_TOLERANCE VALUE = "RAID 1"/>
        <PHYSICAL_DRIVE>
          <LABEL VALUE = "Physical Drive 1"/>
          <STATUS VALUE = "OK"/>
          <SERIAL_NUMBER VALUE = "S7K0Q12T"/>
          <MODEL VALUE = "EG0300FCSPH"/>
          <CAPACITY VALUE = "300 GB"/>
          <LOCATION VALUE = "Port 1I Box 1 Bay 1"/>
          <MEDIA_TYPE VALUE = "HDD"/>
        </PHYSICAL_DRIVE>
      </LOGICAL_DRIVE>
    </CONTROLLER>
  </STORAGE>
  <HEALTH_AT_A_GLANCE>
    <BIOS_HARDWARE STATUS = "OK"/>
    <FANS STATUS = "OK"/>
    <FANS REDUNDANCY = "REDUNDANT"/>
    <TEMPERATURE STATUS = "OK"/>
    <POWER_SUPPLIES STATUS = "OK"/>
    <POWER_SUPPLIES REDUNDANCY = "REDUNDANT"/>
    <BATTERY STATUS = "OK"/>
    <PROCESSOR STATUS = "OK"/>
    <MEMORY STATUS = "Other"/>
    <NETWORK STATUS = "OK"/>
    <STORAGE STATUS = "OK"/>
  </HEALTH_AT_A_GLANCE>
  <SMART_STORAGE_BATTERY>
    <BATTERY>
      <LABEL VALUE = "Battery 1"/>
      <PRESENT VALUE = "Yes"/>
      <STATUS VALUE = "OK"/>
      <MODEL VALUE = "727258-B21"/>
      <SPARE VALUE = "815983-001"/>
      <SERIAL_NUMBER VALUE = "6EZBP0GB2190JQ"/>
      <CAPACITY VALUE = "96 Watts"/>
      <FIRMWARE_VERSION VALUE = "1.1"/>
    </BATTERY>
  </SMART_STORAGE_BATTERY>
</GET_EMBEDDED_HEALTH_DATA>
</RIBCL>
`)

		// iLO3 never reports a VRM section, only the glance entry
		VRMFallbackResponse = []byte(`<?xml version="1.0"?>
<RIBCL VERSION="2.22">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_EMBEDDED_HEALTH_DATA>
  <HEALTH_AT_A_GLANCE>
    <VRM STATUS = "Degraded"/>
  </HEALTH_AT_A_GLANCE>
</GET_EMBEDDED_HEALTH_DATA>
</RIBCL>
`)

		FailedDriveResponse = []byte(`<?xml version="1.0"?>
<RIBCL VERSION="2.23">
<RESPONSE
    STATUS="0x0000"
    MESSAGE='No error'
     />
<GET_EMBEDDED_HEALTH_DATA>
  <STORAGE>
    <CONTROLLER>
      <LABEL VALUE = "Controller on System Board"/>
      <STATUS VALUE = "OK"/>
      <MODEL VALUE = "Smart Array P440ar Controller"/>
      <PHYSICAL_DRIVE>
        <LABEL VALUE = "Physical Drive 2"/>
        <STATUS VALUE = "Failed"/>
        <LOCATION VALUE = "Port 1I Box 1 Bay 2"/>
        <MEDIA_TYPE VALUE = "HDD"/>
      </PHYSICAL_DRIVE>
    </CONTROLLER>
  </STORAGE>
</GET_EMBEDDED_HEALTH_DATA>
</RIBCL>
`)

		exporter prometheus.Collector
	)

	assert := assert.New(t)

	firmwareMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportFirmwareMetrics(payload)
	}

	powerMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportPowerMetrics(payload)
	}

	thermalMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportThermalMetrics(payload)
	}

	healthSummaryMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportHealthSummaryMetrics(payload)
	}

	vrmMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportVRMMetrics(payload)
	}

	fanMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportFanMetrics(payload)
	}

	powerSupplyMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportPowerSupplyMetrics(payload)
	}

	memoryMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportMemoryMetrics(payload)
	}

	processorMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportProcessorMetrics(payload)
	}

	networkMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportNetworkMetrics(payload)
	}

	storageMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportStorageMetrics(payload)
	}

	batteryMetrics := func(exp *Exporter, payload []byte) error {
		return exp.exportBatteryMetrics(payload)
	}

	tests := []struct {
		name             string
		metricName       string
		metricRef1       string
		metricRef2       string
		handleFunc       func(*Exporter, []byte) error
		response         []byte
		expectedResponse string
	}{
		{
			name:       "Firmware Version",
			metricName: "hpilo_firmware_version",
			metricRef1: "firmwareMetrics",
			metricRef2: "firmwareVersion",
			handleFunc: firmwareMetrics,
			response:   GoodFirmwareResponse,
			expectedResponse: `
	# HELP hpilo_firmware_version Current management controller firmware version as a number
	# TYPE hpilo_firmware_version gauge
	hpilo_firmware_version{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 2.73
	`,
		},
		{
			name:       "Firmware Info",
			metricName: "hpilo_firmware_info",
			metricRef1: "firmwareMetrics",
			metricRef2: "firmwareInfo",
			handleFunc: firmwareMetrics,
			response:   GoodFirmwareResponse,
			expectedResponse: `
	# HELP hpilo_firmware_info Snapshot of management controller firmware information, value is always 1
	# TYPE hpilo_firmware_info gauge
	hpilo_firmware_info{firmware_date="Feb 11 2020",firmware_version="2.73",management_processor="iLO4",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 1
	`,
		},
		{
			name:       "Power Reading",
			metricName: "hpilo_power_supplies_reading",
			metricRef1: "powerMetrics",
			metricRef2: "powerSuppliesReading",
			handleFunc: powerMetrics,
			response:   GoodPowerResponse,
			expectedResponse: `
	# HELP hpilo_power_supplies_reading Present power reading in watts
	# TYPE hpilo_power_supplies_reading gauge
	hpilo_power_supplies_reading{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 180
	`,
		},
		{
			name:       "Temperature Detail",
			metricName: "hpilo_temperature_detail",
			metricRef1: "thermalMetrics",
			metricRef2: "temperatureDetail",
			handleFunc: thermalMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_temperature_detail Current temperature sensor reading in celsius
	# TYPE hpilo_temperature_detail gauge
	hpilo_temperature_detail{label="01-Inlet Ambient",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 22
	hpilo_temperature_detail{label="02-CPU 1",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 40
	`,
		},
		{
			name:       "Temperature Caution Thresholds",
			metricName: "hpilo_temperature_caution",
			metricRef1: "thermalMetrics",
			metricRef2: "temperatureCaution",
			handleFunc: thermalMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_temperature_caution Temperature sensor caution threshold in celsius
	# TYPE hpilo_temperature_caution gauge
	hpilo_temperature_caution{label="01-Inlet Ambient",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 42
	hpilo_temperature_caution{label="02-CPU 1",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 70
	`,
		},
		{
			name:       "Temperature Critical Thresholds",
			metricName: "hpilo_temperature_critical",
			metricRef1: "thermalMetrics",
			metricRef2: "temperatureCritical",
			handleFunc: thermalMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_temperature_critical Temperature sensor critical threshold in celsius
	# TYPE hpilo_temperature_critical gauge
	hpilo_temperature_critical{label="01-Inlet Ambient",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 46
	`,
		},
		{
			name:       "Health Summary Fans",
			metricName: "hpilo_fans",
			metricRef1: "healthSummaryMetrics",
			metricRef2: "fans",
			handleFunc: healthSummaryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_fans Current fans health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_fans gauge
	hpilo_fans{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "Health Summary Fans Redundancy",
			metricName: "hpilo_fans_redundancy",
			metricRef1: "healthSummaryMetrics",
			metricRef2: "fansRedundancy",
			handleFunc: healthSummaryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_fans_redundancy Current fans redundancy 0 = Redundant, 1 = Not Redundant, 2 = Other
	# TYPE hpilo_fans_redundancy gauge
	hpilo_fans_redundancy{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "Health Summary Memory Other",
			metricName: "hpilo_memory",
			metricRef1: "healthSummaryMetrics",
			metricRef2: "memory",
			handleFunc: healthSummaryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_memory Current memory health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_memory gauge
	hpilo_memory{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 2
	`,
		},
		{
			name:       "VRM From Module Section",
			metricName: "hpilo_vrm",
			metricRef1: "vrmMetrics",
			metricRef2: "vrm",
			handleFunc: vrmMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_vrm Current voltage regulator health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_vrm gauge
	hpilo_vrm{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "VRM From Health Summary",
			metricName: "hpilo_vrm",
			metricRef1: "vrmMetrics",
			metricRef2: "vrm",
			handleFunc: vrmMetrics,
			response:   VRMFallbackResponse,
			expectedResponse: `
	# HELP hpilo_vrm Current voltage regulator health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_vrm gauge
	hpilo_vrm{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 1
	`,
		},
		{
			name:       "Fan Speed",
			metricName: "hpilo_fans_speed_percent",
			metricRef1: "fanMetrics",
			metricRef2: "fansSpeedPercent",
			handleFunc: fanMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_fans_speed_percent Current fan speed in the unit of percentage, possible values are 0 - 100
	# TYPE hpilo_fans_speed_percent gauge
	hpilo_fans_speed_percent{fan_id="1",server_name="superserver1"} 23
	`,
		},
		{
			name:       "Power Supply Detail",
			metricName: "hpilo_power_supplies_detail",
			metricRef1: "powerSupplyMetrics",
			metricRef2: "powerSuppliesDetail",
			handleFunc: powerSupplyMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_power_supplies_detail Current power supply health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_power_supplies_detail gauge
	hpilo_power_supplies_detail{capacity_w="460",label="Power Supply 1",product_name="ProLiant DL360 Gen9",psu_id="1",server_name="superserver1",status="Good, In Use"} 0
	`,
		},
		{
			name:       "Power Supply Summary",
			metricName: "hpilo_power_supplies_summary",
			metricRef1: "powerSupplyMetrics",
			metricRef2: "powerSuppliesSummary",
			handleFunc: powerSupplyMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_power_supplies_summary Snapshot of power subsystem information, value is always 1
	# TYPE hpilo_power_supplies_summary gauge
	hpilo_power_supplies_summary{high_efficiency_mode="Balanced",power_management_controller_firmware_version="1.0.9",power_system_redundancy="Redundant",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 1
	`,
		},
		{
			name:       "Memory Detail",
			metricName: "hpilo_memory_detail",
			metricRef1: "memoryMetrics",
			metricRef2: "memoryDetail",
			handleFunc: memoryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_memory_detail Installed memory in decimal gigabytes per operating frequency
	# TYPE hpilo_memory_detail gauge
	hpilo_memory_detail{operating_frequency="2133",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 64
	`,
		},
		{
			name:       "Memory DIMM Detail",
			metricName: "hpilo_memory_dimm",
			metricRef1: "memoryMetrics",
			metricRef2: "memoryDimm",
			handleFunc: memoryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_memory_dimm Current memory module health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_memory_dimm gauge
	hpilo_memory_dimm{cpu="1",frequency="2133",part_number="752368-081",product_name="ProLiant DL360 Gen9",server_name="superserver1",socket="1"} 0
	`,
		},
		{
			name:       "Processor Detail",
			metricName: "hpilo_processor_detail",
			metricRef1: "processorMetrics",
			metricRef2: "processorDetail",
			handleFunc: processorMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_processor_detail Current processor socket health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_processor_detail gauge
	hpilo_processor_detail{name="Proc 1",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "NIC Status",
			metricName: "hpilo_nic_status",
			metricRef1: "networkMetrics",
			metricRef2: "nicStatus",
			handleFunc: networkMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_nic_status Current network interface health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_nic_status gauge
	hpilo_nic_status{ip_address="10.20.30.40",location="Embedded",mac_address="aa:bb:cc:dd:ee:ff",port="iLO Dedicated Network Port",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	hpilo_nic_status{ip_address="N/A",location="Embedded",mac_address="11:22:33:44:55:66",port="Port 1",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 2
	`,
		},
		{
			name:       "Storage Controller",
			metricName: "hpilo_storage_controller",
			metricRef1: "storageMetrics",
			metricRef2: "storageController",
			handleFunc: storageMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_storage_controller Current storage controller health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_storage_controller gauge
	hpilo_storage_controller{controller_id="unknown",model="Smart Array P440ar Controller",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "Drive Detail",
			metricName: "hpilo_drive_detail",
			metricRef1: "storageMetrics",
			metricRef2: "driveDetail",
			handleFunc: storageMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_drive_detail Current physical drive health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_drive_detail gauge
	hpilo_drive_detail{drive_id="1",location="Port 1I Box 1 Bay 1",media_type="HDD",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "Worst Drive Healthy",
			metricName: "hpilo_drive",
			metricRef1: "storageMetrics",
			metricRef2: "drive",
			handleFunc: storageMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_drive Worst physical drive health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_drive gauge
	hpilo_drive{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
		{
			name:       "Worst Drive Failed",
			metricName: "hpilo_drive",
			metricRef1: "storageMetrics",
			metricRef2: "drive",
			handleFunc: storageMetrics,
			response:   FailedDriveResponse,
			expectedResponse: `
	# HELP hpilo_drive Worst physical drive health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_drive gauge
	hpilo_drive{product_name="ProLiant DL360 Gen9",server_name="superserver1"} 2
	`,
		},
		{
			name:       "Battery Detail",
			metricName: "hpilo_battery_detail",
			metricRef1: "batteryMetrics",
			metricRef2: "batteryDetail",
			handleFunc: batteryMetrics,
			response:   GoodHealthResponse,
			expectedResponse: `
	# HELP hpilo_battery_detail Current smart storage battery health 0 = OK, 1 = Degraded, 2 = Dead or Other
	# TYPE hpilo_battery_detail gauge
	hpilo_battery_detail{battery_id="1",model="727258-B21",product_name="ProLiant DL360 Gen9",server_name="superserver1"} 0
	`,
		},
	}

	exporter = &Exporter{
		ctx:           context.Background(),
		serverName:    "superserver1",
		productName:   "ProLiant DL360 Gen9",
		deviceMetrics: NewDeviceMetrics(),
	}

	prometheus.MustRegister(exporter)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			metric := (*exporter.(*Exporter).deviceMetrics)[test.metricRef1]
			m := (*metric)[test.metricRef2]
			m.Reset()

			err := test.handleFunc(exporter.(*Exporter), test.response)
			if err != nil {
				t.Error(err)
			}

			assert.Empty(testutil.CollectAndCompare(m, strings.NewReader(test.expectedResponse), test.metricName))
		})
	}

	prometheus.Unregister(exporter)
}

// iloHandler answers like one controller, routing on the command tag in
// the posted document.
func iloHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	payload := string(body)
	switch {
	case strings.Contains(payload, "GET_SERVER_NAME"):
		fmt.Fprint(w, testServerNameResponse)
	case strings.Contains(payload, "GET_PRODUCT_NAME"):
		fmt.Fprint(w, testProductNameResponse)
	default:
		w.Write([]byte("Unknown command - please create test case(s) for it"))
	}
}

func Test_NewExporter_Identity(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(iloHandler))
	defer server.Close()

	exp, err := NewExporter(context.Background(), registry.Target{
		Name:    "test-ilo",
		Address: server.URL,
		Enabled: true,
	})
	assert.Nil(err)
	assert.NotNil(exp)
	assert.Equal("superserver1", exp.ServerName())
	assert.Equal("ProLiant DL360 Gen9", exp.ProductName())
	assert.Equal(server.URL, exp.Host())
}

func Test_NewExporter_IdentityFallbacks(t *testing.T) {
	assert := assert.New(t)

	// unnamed server, identity commands not implemented
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testUnsupportedResponse)
	}))
	defer server.Close()

	exp, err := NewExporter(context.Background(), registry.Target{
		Name:    "fallback-ilo",
		Address: server.URL,
		Enabled: true,
	})
	assert.Nil(err)
	assert.NotNil(exp)
	assert.Equal("fallback-ilo", exp.ServerName())
	assert.Equal("unknown", exp.ProductName())
}

func Test_NewExporter_AuthFailure(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	exp, err := NewExporter(context.Background(), registry.Target{
		Name:    "locked-ilo",
		Address: server.URL,
		Enabled: true,
	})
	assert.Nil(exp)
	assert.True(errors.Is(err, ribcl.ErrAuthFailed), "got %v", err)
}
