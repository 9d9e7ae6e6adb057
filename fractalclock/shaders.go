package fractalclock

// One tree node per texel: position in xy, hand vector in zw. Nodes 0 and
// 1 are reset from the hand uniforms; every other node derives from its
// parent at floor(index/2)-1 by complex-multiplying the parent's hand with
// the hour or minute step. One pass therefore doubles the valid depth of
// the tree already present in u_input_0.
const computeFragmentSource = `#version 410 core
precision highp float;

uniform sampler2D u_input_0;
uniform vec2 u_dimensions;
uniform vec2 u_hour_start;
uniform vec2 u_minute_start;
uniform vec2 u_hour;
uniform vec2 u_minute;

out vec4 fragColor;

vec4 nodeAt(float index) {
    float y = floor(index / u_dimensions.x);
    float x = mod(index, u_dimensions.x);
    return texture(u_input_0, (vec2(x, y) + 0.5) / u_dimensions);
}

void main() {
    float index = floor(u_dimensions.x) * floor(gl_FragCoord.y) + floor(gl_FragCoord.x);

    if (index == 0.0) {
        fragColor = vec4(u_hour_start.xy, u_hour_start.xy);
    } else if (index == 1.0) {
        fragColor = vec4(u_minute_start.xy, u_minute_start.xy);
    } else {
        vec4 parent = nodeAt(floor(index / 2.0) - 1.0);
        vec2 hand = parent.zw;

        if (mod(index, 2.0) == 0.0) {
            hand = vec2(hand.x * u_hour.x - hand.y * u_hour.y, hand.x * u_hour.y + hand.y * u_hour.x);
        } else {
            hand = vec2(hand.x * u_minute.x - hand.y * u_minute.y, hand.x * u_minute.y + hand.y * u_minute.x);
        }

        fragColor = vec4(parent.x + hand.x, parent.y + hand.y, hand.xy);
    }
}
`

// Two vertices per line, two lines per node. Even indices resolve to the
// node's parent (or the origin for the roots), odd indices to the node
// itself, so consecutive pairs trace each hand segment.
const renderVertexSource = `#version 410 core
precision mediump float;

in float a_index;

uniform sampler2D u_input;
uniform vec2 u_dimensions;
uniform vec2 u_scale;

vec4 nodeAt(float index) {
    float y = floor(index / u_dimensions.x);
    float x = mod(index, u_dimensions.x);
    return texture(u_input, (vec2(x, y) + 0.5) / u_dimensions);
}

void main() {
    float vertexIndex = floor(a_index / 2.0);
    if (mod(a_index, 2.0) == 0.0) {
        vertexIndex = floor(vertexIndex / 2.0) - 1.0;
    }
    if (vertexIndex == -1.0) {
        gl_Position = vec4(0.0, 0.0, 0.0, 1.0);
    } else {
        vec2 position = nodeAt(vertexIndex).xy;
        gl_Position = vec4(position.y * u_scale.x, position.x * u_scale.y, 0.0, 1.0);
    }
}
`

const renderFragmentSource = `#version 410 core
precision mediump float;

uniform vec4 u_color;

out vec4 fragColor;

void main() {
    fragColor = u_color;
}
`
