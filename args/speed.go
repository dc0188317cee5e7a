package args

import "fmt"

// MaxDriveSpeed is the highest speed step a Speed can carry.
const MaxDriveSpeed = 126

// Speed is the speed of a slot.
//
// It is stored as its wire code: 0 means stop, 1 means emergency stop and
// n in 2..127 means drive at speed step n-1.
type Speed byte

const (
	// SpeedStop stops the locomotive with its configured deceleration.
	SpeedStop Speed = 0
	// SpeedEmergencyStop stops the locomotive immediately.
	SpeedEmergencyStop Speed = 1
)

// SpeedDrive returns the speed for speed step n.
//
// Step 0 is SpeedStop, steps above MaxDriveSpeed are clamped.
func SpeedDrive(n byte) Speed {
	if n == 0 {
		return SpeedStop
	}
	if n > MaxDriveSpeed {
		n = MaxDriveSpeed
	}

	return Speed(n + 1)
}

// ParseSpeed decodes a speed from its wire byte.
func ParseSpeed(b byte) Speed { return Speed(b & 0x7F) }

// Wire returns the wire code of the speed.
func (s Speed) Wire() byte { return byte(s) & 0x7F }

// IsStop reports whether s is a normal stop.
func (s Speed) IsStop() bool { return s.Wire() == 0 }

// IsEmergencyStop reports whether s is an emergency stop.
func (s Speed) IsEmergencyStop() bool { return s.Wire() == 1 }

// Drive returns the speed step and true when s is a drive speed.
func (s Speed) Drive() (byte, bool) {
	if s.Wire() < 2 {
		return 0, false
	}

	return s.Wire() - 1, true
}

// Step returns the speed step, treating both stop kinds as step 0.
func (s Speed) Step() byte {
	n, _ := s.Drive()
	return n
}

func (s Speed) String() string {
	switch {
	case s.IsStop():
		return "stop"
	case s.IsEmergencyStop():
		return "emergency-stop"
	}

	return fmt.Sprintf("drive(%d)", s.Step())
}
