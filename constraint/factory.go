package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/math3d"
)

// Config is the tagged record a joint is created from. Only the fields
// relevant to the configured Type are read; the rest are ignored.
type Config struct {
	Type JointType

	// BodyA must reference a real body. BodyB may be the world sentinel
	// (actor.WorldBodyID), anchoring the joint to a fixed world point; in
	// that case LocalAnchorB is interpreted in world coordinates.
	BodyA actor.BodyID
	BodyB actor.BodyID

	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	// Axis, in body A's frame; hinge and slider.
	Axis mgl64.Vec3

	// Distance and spring.
	RestLength float64
	Stiffness  float64
	Damping    float64

	// Hinge (radians) and slider (meters) limits.
	EnableLimit bool
	LowerLimit  float64
	UpperLimit  float64

	// Motor: angular velocity + max torque for hinges, linear velocity +
	// max force for sliders.
	EnableMotor   bool
	MotorSpeed    float64
	MaxMotorForce float64

	// Break thresholds; zero disables breakage.
	BreakForce  float64
	BreakTorque float64
}

// New builds a joint from its configuration. Validation failures are the
// caller's errors, reported loudly instead of producing a half-configured
// constraint.
func New(id JointID, cfg Config) (Joint, error) {
	if cfg.BodyA == actor.WorldBodyID {
		return nil, errors.New("constraint: bodyA must be a real body, not the world sentinel")
	}
	if cfg.BodyA == cfg.BodyB {
		return nil, errors.Errorf("constraint: joint connects body %d to itself", cfg.BodyA)
	}

	base := jointBase{
		id:           id,
		jointType:    cfg.Type,
		bodyA:        cfg.BodyA,
		bodyB:        cfg.BodyB,
		localAnchorA: cfg.LocalAnchorA,
		localAnchorB: cfg.LocalAnchorB,
		enabled:      true,
		breakForce:   cfg.BreakForce,
		breakTorque:  cfg.BreakTorque,
	}

	switch cfg.Type {
	case JointBall:
		return &BallJoint{jointBase: base}, nil

	case JointFixed:
		return &FixedJoint{jointBase: base}, nil

	case JointDistance:
		if cfg.RestLength < 0 {
			return nil, errors.Errorf("constraint: negative rest length %v", cfg.RestLength)
		}
		return &DistanceJoint{jointBase: base, restLength: cfg.RestLength}, nil

	case JointSpring:
		if cfg.Stiffness < 0 || cfg.Damping < 0 {
			return nil, errors.Errorf("constraint: negative spring parameters (stiffness %v, damping %v)",
				cfg.Stiffness, cfg.Damping)
		}
		return &SpringJoint{
			jointBase:  base,
			restLength: cfg.RestLength,
			stiffness:  cfg.Stiffness,
			damping:    cfg.Damping,
		}, nil

	case JointHinge:
		axis, err := unitAxis(cfg.Axis)
		if err != nil {
			return nil, err
		}
		return &HingeJoint{
			jointBase:      base,
			localAxisA:     axis,
			enableLimit:    cfg.EnableLimit,
			lowerLimit:     cfg.LowerLimit,
			upperLimit:     cfg.UpperLimit,
			enableMotor:    cfg.EnableMotor,
			motorSpeed:     cfg.MotorSpeed,
			maxMotorTorque: cfg.MaxMotorForce,
		}, nil

	case JointSlider:
		axis, err := unitAxis(cfg.Axis)
		if err != nil {
			return nil, err
		}
		return &SliderJoint{
			jointBase:     base,
			localAxisA:    axis,
			enableLimit:   cfg.EnableLimit,
			lowerLimit:    cfg.LowerLimit,
			upperLimit:    cfg.UpperLimit,
			enableMotor:   cfg.EnableMotor,
			motorSpeed:    cfg.MotorSpeed,
			maxMotorForce: cfg.MaxMotorForce,
		}, nil
	}

	return nil, errors.Errorf("constraint: unknown joint type %d", cfg.Type)
}

func unitAxis(axis mgl64.Vec3) (mgl64.Vec3, error) {
	if axis.LenSqr() < math3d.Epsilon {
		return mgl64.Vec3{}, errors.New("constraint: joint axis must be non-zero")
	}
	return axis.Normalize(), nil
}
