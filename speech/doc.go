// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 speech 提供语音合成 (TTS) 与语音识别 (STT) 接入层，
封装 MiniMax 与 OpenAI Whisper 的 HTTP API。

# 概述

本包将 TTS 与 STT 两大语音能力抽象为独立的 Provider 接口，
屏蔽服务商在音频编码（hex 内嵌、文件下载、multipart 上传）、
鉴权方式和响应结构上的差异。调用方通过统一的请求模型完成
文本朗读、长文本异步合成、音色管理与语音转写。

典型使用场景：

  - 将短文本（≤10000 字符）同步合成为音频并保存为文件。
  - 将长文本（≤50000 字符）提交异步任务，轮询完成后下载结果。
  - 查询系统音色与克隆音色，上传参考音频克隆新音色，
    或通过文字描述设计音色。
  - 将音频文件转写为文本或 SRT 字幕。

# 核心类型

  - MiniMaxTTS：同步语音合成客户端（POST /v1/t2a_v2）。
  - AsyncTTS：异步长文本合成客户端，含任务创建、查询、
    轮询等待与结果下载。
  - VoiceManager：音色查询、上传、克隆与设计。
  - WhisperSTT：OpenAI Whisper 转写客户端，支持
    json/text/srt/vtt/verbose_json 输出格式。
  - RenderSRT / WriteSRT：片段级转写结果到 SubRip 字幕的渲染。

# 错误约定

MiniMax 的错误通过响应体中的 base_resp.status_code 传达，
HTTP 200 不代表成功；所有客户端在解码后检查该信封并返回
包装后的错误。

所有阻塞调用均接受 context.Context，轮询等待可被取消。
*/
package speech
