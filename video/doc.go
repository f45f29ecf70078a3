// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 video 封装火山方舟 Doubao Seedance 视频生成 API。

# 概述

任务制接口：提交生成任务后轮询状态直至 succeeded/failed，
成功后从结果 URL 下载视频。结果 URL 约 24 小时后过期，
应在拿到后立即下载。

  - CreateTask：提交任务（POST /contents/generations/tasks）。
    resolution/ratio/duration 等生成参数作为请求体顶层字段提交，
    本地参考图编码为 base64 data URI。
  - GetTask / WaitForTask：查询与轮询，默认 10 秒间隔、
    10 分钟上限，可被 context 取消。
  - Download / Generate：下载结果；Generate 是提交、等待、
    下载的一站式封装。
  - GenerateChain：多段连续视频，每段以前一段的末帧
    (return_last_frame) 作为首帧衔接。

# 模型约束

时长限制 4..12 秒。多张参考图输入仅 lite 模型
(doubao-seedance-1-0-lite-i2v-250428) 支持，客户端检测到
多图时自动切换并关闭音频（lite 不支持配乐）。
*/
package video
