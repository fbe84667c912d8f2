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

import "encoding/xml"

// Value is the pervasive VALUE/UNIT attribute pair the firmware uses
// for nearly every leaf element.
type Value struct {
	Value string `xml:"VALUE,attr"`
	Unit  string `xml:"UNIT,attr"`
}

// document is one RIBCL element out of the response stream. Which
// payload pointer is populated depends on the command that was sent.
type document struct {
	XMLName        xml.Name         `xml:"RIBCL"`
	Version        string           `xml:"VERSION,attr"`
	Response       *responseStatus  `xml:"RESPONSE"`
	Firmware       *FirmwareVersion `xml:"GET_FW_VERSION"`
	PowerReadings  *PowerReadings   `xml:"GET_POWER_READINGS"`
	EmbeddedHealth *EmbeddedHealth  `xml:"GET_EMBEDDED_HEALTH_DATA"`
	ProductName    *productName     `xml:"GET_PRODUCT_NAME"`
	ServerName     *serverName      `xml:"SERVER_NAME"`
}

type responseStatus struct {
	Status  string `xml:"STATUS,attr"`
	Message string `xml:"MESSAGE,attr"`
}

type productName struct {
	Name Value `xml:"PRODUCT_NAME"`
}

type serverName struct {
	Value string `xml:"VALUE,attr"`
}

// FirmwareVersion is the GET_FW_VERSION payload.
type FirmwareVersion struct {
	FirmwareVersion     string `xml:"FIRMWARE_VERSION,attr"`
	FirmwareDate        string `xml:"FIRMWARE_DATE,attr"`
	ManagementProcessor string `xml:"MANAGEMENT_PROCESSOR,attr"`
	LicenseType         string `xml:"LICENSE_TYPE,attr"`
}

// PowerReadings is the GET_POWER_READINGS payload.
type PowerReadings struct {
	Present Value `xml:"PRESENT_POWER_READING"`
	Average Value `xml:"AVERAGE_POWER_READING"`
	Maximum Value `xml:"MAXIMUM_POWER_READING"`
	Minimum Value `xml:"MINIMUM_POWER_READING"`
}

// EmbeddedHealth is the GET_EMBEDDED_HEALTH_DATA payload. Sections a
// given controller generation does not implement decode to nil.
type EmbeddedHealth struct {
	Fans          *FansSection          `xml:"FANS"`
	Temperature   *TemperatureSection   `xml:"TEMPERATURE"`
	PowerSupplies *PowerSuppliesSection `xml:"POWER_SUPPLIES"`
	VRM           *VRMSection           `xml:"VRM"`
	Processors    *ProcessorsSection    `xml:"PROCESSORS"`
	Memory        *MemorySection        `xml:"MEMORY"`
	NICs          *NICSection           `xml:"NIC_INFORMATION"`
	NICsAlt       *NICSection           `xml:"NIC_INFORMATIONS"`
	Storage       *StorageSection       `xml:"STORAGE"`
	Health        *HealthAtAGlance      `xml:"HEALTH_AT_A_GLANCE"`
	Battery       *BatterySection       `xml:"SMART_STORAGE_BATTERY"`
}

// Network returns whichever NIC section spelling the firmware used.
func (h *EmbeddedHealth) Network() *NICSection {
	if h.NICs != nil {
		return h.NICs
	}
	return h.NICsAlt
}

type Fan struct {
	Label  Value `xml:"LABEL"`
	Zone   Value `xml:"ZONE"`
	Status Value `xml:"STATUS"`
	Speed  Value `xml:"SPEED"`
}

type FansSection struct {
	Fans []Fan `xml:"FAN"`
}

type TemperatureSensor struct {
	Label          Value `xml:"LABEL"`
	Location       Value `xml:"LOCATION"`
	Status         Value `xml:"STATUS"`
	CurrentReading Value `xml:"CURRENTREADING"`
	Caution        Value `xml:"CAUTION"`
	Critical       Value `xml:"CRITICAL"`
}

type TemperatureSection struct {
	Sensors []TemperatureSensor `xml:"TEMP"`
}

type PowerSupply struct {
	Label           Value `xml:"LABEL"`
	Present         Value `xml:"PRESENT"`
	Status          Value `xml:"STATUS"`
	PDS             Value `xml:"PDS"`
	HotplugCapable  Value `xml:"HOTPLUG_CAPABLE"`
	Model           Value `xml:"MODEL"`
	Spare           Value `xml:"SPARE"`
	SerialNumber    Value `xml:"SERIAL_NUMBER"`
	Capacity        Value `xml:"CAPACITY"`
	FirmwareVersion Value `xml:"FIRMWARE_VERSION"`
}

type PowerSupplySummary struct {
	PresentPowerReading     Value `xml:"PRESENT_POWER_READING"`
	PMCFirmwareVersion      Value `xml:"POWER_MANAGEMENT_CONTROLLER_FIRMWARE_VERSION"`
	PowerSystemRedundancy   Value `xml:"POWER_SYSTEM_REDUNDANCY"`
	DiscoveryServicesStatus Value `xml:"HP_POWER_DISCOVERY_SERVICES_REDUNDANCY_STATUS"`
	HighEfficiencyMode      Value `xml:"HIGH_EFFICIENCY_MODE"`
}

type PowerSuppliesSection struct {
	Summary  *PowerSupplySummary `xml:"POWER_SUPPLY_SUMMARY"`
	Supplies []PowerSupply       `xml:"SUPPLY"`
}

type VRMModule struct {
	Label  Value `xml:"LABEL"`
	Status Value `xml:"STATUS"`
}

type VRMSection struct {
	Modules []VRMModule `xml:"MODULE"`
}

type Processor struct {
	Label      Value `xml:"LABEL"`
	Name       Value `xml:"NAME"`
	Status     Value `xml:"STATUS"`
	Speed      Value `xml:"SPEED"`
	Execution  Value `xml:"EXECUTION_TECHNOLOGY"`
	MemoryTech Value `xml:"MEMORY_TECHNOLOGY"`
	InternalL1 Value `xml:"INTERNAL_L1_CACHE"`
	InternalL2 Value `xml:"INTERNAL_L2_CACHE"`
	InternalL3 Value `xml:"INTERNAL_L3_CACHE"`
}

type ProcessorsSection struct {
	Processors []Processor `xml:"PROCESSOR"`
}

// MemorySection carries both the per socket summary and the per DIMM
// detail. The firmware keys both by an element named after the socket
// (CPU_1, CPU_2, ...), so the inner lists decode with ",any" and keep
// the element name alongside the payload.
type MemorySection struct {
	AdvancedProtection *Value                `xml:"ADVANCED_MEMORY_PROTECTION"`
	Summary            *MemoryDetailsSummary `xml:"MEMORY_DETAILS_SUMMARY"`
	Details            *MemoryDetails        `xml:"MEMORY_DETAILS"`
}

type MemoryDetailsSummary struct {
	CPUs []MemorySummaryEntry `xml:",any"`
}

type MemorySummaryEntry struct {
	XMLName            xml.Name
	NumberOfSockets    Value `xml:"NUMBER_OF_SOCKETS"`
	TotalMemorySize    Value `xml:"TOTAL_MEMORY_SIZE"`
	OperatingFrequency Value `xml:"OPERATING_FREQUENCY"`
	OperatingVoltage   Value `xml:"OPERATING_VOLTAGE"`
}

type MemoryDetails struct {
	CPUs []MemoryCPU `xml:",any"`
}

type MemoryCPU struct {
	XMLName xml.Name
	Sockets []MemorySocket `xml:"SOCKET"`
}

type MemorySocket struct {
	Socket     Value      `xml:"SOCKET_NUM"`
	Status     Value      `xml:"STATUS"`
	HPSmart    Value      `xml:"HP_SMART_MEMORY"`
	Part       PartNumber `xml:"PART"`
	Type       Value      `xml:"TYPE"`
	Size       Value      `xml:"SIZE"`
	Frequency  Value      `xml:"FREQUENCY"`
	Minimum    Value      `xml:"MINIMUM_VOLTAGE"`
	Ranks      Value      `xml:"RANKS"`
	Technology Value      `xml:"TECHNOLOGY"`
}

type PartNumber struct {
	Number string `xml:"NUMBER,attr"`
}

type NIC struct {
	NetworkPort Value `xml:"NETWORK_PORT"`
	Description Value `xml:"PORT_DESCRIPTION"`
	Location    Value `xml:"LOCATION"`
	MACAddress  Value `xml:"MAC_ADDRESS"`
	IPAddress   Value `xml:"IP_ADDRESS"`
	Status      Value `xml:"STATUS"`
}

type NICSection struct {
	ILO  []NIC `xml:"ILO"`
	NICs []NIC `xml:"NIC"`
}

// All returns management and host ports as one list.
func (n *NICSection) All() []NIC {
	all := make([]NIC, 0, len(n.ILO)+len(n.NICs))
	all = append(all, n.ILO...)
	all = append(all, n.NICs...)
	return all
}

// HealthEntries exists because HEALTH_AT_A_GLANCE repeats each
// subsystem element, once with a STATUS attribute and once with a
// REDUNDANCY attribute.
type HealthEntries []healthEntry

type healthEntry struct {
	Status     string `xml:"STATUS,attr"`
	Redundancy string `xml:"REDUNDANCY,attr"`
}

func (h HealthEntries) Status() string {
	for _, e := range h {
		if e.Status != "" {
			return e.Status
		}
	}
	return ""
}

func (h HealthEntries) Redundancy() string {
	for _, e := range h {
		if e.Redundancy != "" {
			return e.Redundancy
		}
	}
	return ""
}

type HealthAtAGlance struct {
	BIOSHardware  HealthEntries `xml:"BIOS_HARDWARE"`
	Fans          HealthEntries `xml:"FANS"`
	Temperature   HealthEntries `xml:"TEMPERATURE"`
	PowerSupplies HealthEntries `xml:"POWER_SUPPLIES"`
	Battery       HealthEntries `xml:"BATTERY"`
	Processor     HealthEntries `xml:"PROCESSOR"`
	Memory        HealthEntries `xml:"MEMORY"`
	Network       HealthEntries `xml:"NETWORK"`
	Storage       HealthEntries `xml:"STORAGE"`
	VRM           HealthEntries `xml:"VRM"`
}

type PhysicalDrive struct {
	Label              Value `xml:"LABEL"`
	Status             Value `xml:"STATUS"`
	SerialNumber       Value `xml:"SERIAL_NUMBER"`
	Model              Value `xml:"MODEL"`
	Capacity           Value `xml:"CAPACITY"`
	Location           Value `xml:"LOCATION"`
	FirmwareVersion    Value `xml:"FW_VERSION"`
	DriveConfiguration Value `xml:"DRIVE_CONFIGURATION"`
	MediaType          Value `xml:"MEDIA_TYPE"`
	EncryptionStatus   Value `xml:"ENCRYPTION_STATUS"`
}

type LogicalDrive struct {
	Label          Value           `xml:"LABEL"`
	Status         Value           `xml:"STATUS"`
	Capacity       Value           `xml:"CAPACITY"`
	FaultTolerance Value           `xml:"FAULT_TOLERANCE"`
	PhysicalDrives []PhysicalDrive `xml:"PHYSICAL_DRIVE"`
}

type DriveEnclosure struct {
	Label    Value `xml:"LABEL"`
	Status   Value `xml:"STATUS"`
	DriveBay Value `xml:"DRIVE_BAY"`
}

type StorageController struct {
	Label             Value            `xml:"LABEL"`
	Status            Value            `xml:"STATUS"`
	ControllerStatus  Value            `xml:"CONTROLLER_STATUS"`
	SerialNumber      Value            `xml:"SERIAL_NUMBER"`
	Model             Value            `xml:"MODEL"`
	FirmwareVersion   Value            `xml:"FW_VERSION"`
	CacheModuleStatus Value            `xml:"CACHE_MODULE_STATUS"`
	Enclosures        []DriveEnclosure `xml:"DRIVE_ENCLOSURE"`
	LogicalDrives     []LogicalDrive   `xml:"LOGICAL_DRIVE"`
	PhysicalDrives    []PhysicalDrive  `xml:"PHYSICAL_DRIVE"`
}

type StorageSection struct {
	Controllers []StorageController `xml:"CONTROLLER"`
}

// Drives flattens every physical drive under a controller, whether it
// hangs off a logical drive or sits directly on the controller.
func (c *StorageController) Drives() []PhysicalDrive {
	drives := make([]PhysicalDrive, 0, len(c.PhysicalDrives))
	for _, ld := range c.LogicalDrives {
		drives = append(drives, ld.PhysicalDrives...)
	}
	drives = append(drives, c.PhysicalDrives...)
	return drives
}

type Battery struct {
	Label           Value `xml:"LABEL"`
	Present         Value `xml:"PRESENT"`
	Status          Value `xml:"STATUS"`
	Model           Value `xml:"MODEL"`
	Spare           Value `xml:"SPARE"`
	SerialNumber    Value `xml:"SERIAL_NUMBER"`
	Capacity        Value `xml:"CAPACITY"`
	FirmwareVersion Value `xml:"FIRMWARE_VERSION"`
}

type BatterySection struct {
	Batteries []Battery `xml:"BATTERY"`
}
