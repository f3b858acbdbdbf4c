// Package vkshader loads a translated SPIR-V byte stream into a Vulkan
// VkShaderModule, grounded on the createShaderModule helper in
// IntuitionAmiga-IntuitionEngine's Vulkan backend.
package vkshader

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Compile wraps the SPIR-V produced by transpile.Convert into a Vulkan
// shader module on dev. code's length must be a multiple of 4; Convert's
// output always satisfies this since SPIR-V is a stream of 32-bit words.
func Compile(dev vk.Device, code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.NullShaderModule, fmt.Errorf("vkshader: SPIR-V byte length %d is not a non-zero multiple of 4", len(code))
	}

	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    wordsOf(code),
	}

	var module vk.ShaderModule
	if res := vk.CreateShaderModule(dev, &info, nil, &module); res != vk.Success {
		return vk.NullShaderModule, fmt.Errorf("vkshader: vkCreateShaderModule failed: %d", res)
	}
	return module, nil
}

// Destroy releases a shader module created by Compile.
func Destroy(dev vk.Device, module vk.ShaderModule) {
	if module == vk.NullShaderModule {
		return
	}
	vk.DestroyShaderModule(dev, module, nil)
}

// wordsOf reinterprets a SPIR-V byte buffer as the little-endian uint32
// words vk.ShaderModuleCreateInfo.PCode expects, without copying.
func wordsOf(code []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&code[0])), len(code)/4)
}
