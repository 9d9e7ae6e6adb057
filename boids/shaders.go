package boids

// One texel per boid: position in xy, velocity in zw. Each pass reads the
// whole flock from u_input_0 and writes the next position/velocity for the
// boid addressed by gl_FragCoord.
const computeFragmentSource = `#version 410 core
precision highp float;

uniform sampler2D u_input_0;
uniform vec2 u_dimensions;

uniform vec2 u_space;
uniform float u_cohesion;
uniform float u_separation;
uniform float u_alignment;
uniform float u_edge_avoidance;
uniform float u_avoidance_radius;
uniform float u_detection_radius;
uniform float u_min_velocity;
uniform float u_max_velocity;
uniform float u_max_acceleration;

out vec4 fragColor;

vec4 boidAt(float index) {
    vec2 pixel = vec2(mod(index, u_dimensions.x), floor(index / u_dimensions.x));
    return texture(u_input_0, (pixel + 0.5) / u_dimensions);
}

vec2 clampLength(vec2 v, float minLen, float maxLen) {
    float len = length(v);
    if (len < 1e-6) {
        return vec2(minLen, 0.0);
    }
    return v * (clamp(len, minLen, maxLen) / len);
}

void main() {
    vec4 self = texture(u_input_0, gl_FragCoord.xy / u_dimensions);
    vec2 position = self.xy;
    vec2 velocity = self.zw;

    float count = u_dimensions.x * u_dimensions.y;

    vec2 center = vec2(0.0);
    vec2 heading = vec2(0.0);
    vec2 repulsion = vec2(0.0);
    float neighbours = 0.0;

    for (float i = 0.0; i < count; i += 1.0) {
        vec4 other = boidAt(i);
        vec2 offset = other.xy - position;
        float dist = length(offset);
        if (dist <= 0.0 || dist > u_detection_radius) {
            continue;
        }
        neighbours += 1.0;
        center += other.xy;
        heading += other.zw;
        if (dist < u_avoidance_radius) {
            repulsion -= offset * (u_avoidance_radius - dist) / u_avoidance_radius;
        }
    }

    vec2 acceleration = vec2(0.0);
    if (neighbours > 0.0) {
        acceleration += (center / neighbours - position) * u_cohesion;
        acceleration += (heading / neighbours - velocity) * u_alignment;
        acceleration += repulsion * u_separation;
    }

    vec2 margin = u_space - abs(position);
    vec2 edge = vec2(0.0);
    if (margin.x < u_detection_radius) {
        edge.x = -sign(position.x) * (u_detection_radius - margin.x) / u_detection_radius;
    }
    if (margin.y < u_detection_radius) {
        edge.y = -sign(position.y) * (u_detection_radius - margin.y) / u_detection_radius;
    }
    acceleration += edge * u_edge_avoidance;

    float accelLen = length(acceleration);
    if (accelLen > u_max_acceleration) {
        acceleration *= u_max_acceleration / accelLen;
    }

    velocity = clampLength(velocity + acceleration, u_min_velocity, u_max_velocity);
    position = clamp(position + velocity, -u_space, u_space);

    fragColor = vec4(position, velocity);
}
`

// Three vertices per boid; a_index selects both the boid texel and the
// triangle corner. The triangle points along the boid's velocity.
const renderVertexSource = `#version 410 core
precision highp float;

in float a_index;

uniform sampler2D u_input;
uniform vec2 u_dimensions;
uniform float u_aspect;

void main() {
    float boid = floor(a_index / 3.0);
    float corner = mod(a_index, 3.0);

    vec2 pixel = vec2(mod(boid, u_dimensions.x), floor(boid / u_dimensions.x));
    vec4 state = texture(u_input, (pixel + 0.5) / u_dimensions);
    vec2 position = state.xy;
    vec2 velocity = state.zw;

    vec2 forward = velocity;
    float len = length(forward);
    if (len < 1e-6) {
        forward = vec2(1.0, 0.0);
    } else {
        forward /= len;
    }
    vec2 side = vec2(-forward.y, forward.x);

    vec2 vertex = position;
    if (corner == 0.0) {
        vertex += forward * 0.02;
    } else if (corner == 1.0) {
        vertex += side * 0.0075 - forward * 0.01;
    } else {
        vertex += -side * 0.0075 - forward * 0.01;
    }

    gl_Position = vec4(vertex.x * u_aspect, vertex.y, 0.0, 1.0);
}
`

const renderFragmentSource = `#version 410 core
precision highp float;

out vec4 fragColor;

void main() {
    fragColor = vec4(0.85, 0.9, 1.0, 1.0);
}
`
